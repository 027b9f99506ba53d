package middleware

import (
	"context"
	"net/http"
	"strings"

	"hostel-backend/internal/auth"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware verifies bearer tokens and resolves the acting user
// into the request context so handlers never re-parse the token.
type AuthMiddleware struct {
	JWT   *auth.JWTManager
	Users repositories.UserStore
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users repositories.UserStore) *AuthMiddleware {
	return &AuthMiddleware{JWT: jwtManager, Users: users}
}

// RequireAuth rejects requests without a valid token or with a
// deactivated account.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Authorization token required", http.StatusUnauthorized)
			return
		}

		claims, err := m.JWT.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		user, err := m.Users.FindByID(r.Context(), claims.Subject)
		if err != nil || !user.IsActive {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole restricts a route to the given roles. Must be wrapped
// inside RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Access denied", http.StatusForbidden)
		})
	}
}

// GetUserFromContext returns the resolved acting user.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// GetUserIDFromContext returns just the acting user's id.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return "", false
	}
	return user.ID, true
}

// GetRoleFromContext returns the acting user's role.
func GetRoleFromContext(ctx context.Context) (models.Role, bool) {
	user, ok := GetUserFromContext(ctx)
	if !ok {
		return "", false
	}
	return user.Role, true
}
