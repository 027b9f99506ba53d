package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/config"
	"hostel-backend/internal/models"
	"hostel-backend/internal/timeutil"
)

// Claims are the token claims carried alongside the registered set.
type Claims struct {
	UserType models.Role `json:"user_type"`
	Name     string      `json:"name"`
	Room     string      `json:"room,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies access tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret: []byte(cfg.JWT.Secret),
		expiry: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	}
}

// Generate issues a signed token for the user. Students carry their
// room number as a claim so gate staff tooling can show it without a
// directory lookup.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	now := timeutil.Now()
	claims := Claims{
		UserType: user.Role,
		Name:     user.Name,
		Room:     user.Room(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token, returning its claims.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Validation("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Validation("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, apperrors.Validation("invalid token claims")
	}
	return claims, nil
}
