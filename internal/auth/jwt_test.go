package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/config"
	"hostel-backend/internal/models"
)

func managerWithSecret(secret string) *JWTManager {
	return NewJWTManager(&config.Config{
		JWT: config.JWTConfig{Secret: secret, ExpiryHours: 1},
	})
}

func TestGenerateAndVerify(t *testing.T) {
	manager := managerWithSecret("test-secret")

	student, err := models.NewUser("STU001", "Asha Verma", models.RoleStudent, &models.StudentProfile{Room: "A-101"}, nil, nil)
	require.NoError(t, err)

	token, err := manager.Generate(student)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "STU001", claims.Subject)
	assert.Equal(t, models.RoleStudent, claims.UserType)
	assert.Equal(t, "Asha Verma", claims.Name)
	assert.Equal(t, "A-101", claims.Room)
}

func TestStaffTokenHasNoRoom(t *testing.T) {
	manager := managerWithSecret("test-secret")

	warden, err := models.NewUser("WRD001", "Dr. Mehta", models.RoleWarden, nil, &models.WardenProfile{}, nil)
	require.NoError(t, err)

	token, err := manager.Generate(warden)
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Room)
}

func TestVerifyRejectsTamperedTokens(t *testing.T) {
	manager := managerWithSecret("test-secret")
	other := managerWithSecret("different-secret")

	student, err := models.NewUser("STU001", "Asha", models.RoleStudent, &models.StudentProfile{}, nil, nil)
	require.NoError(t, err)

	token, err := manager.Generate(student)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)

	_, err = manager.Verify("not.a.token")
	assert.Error(t, err)

	_, err = manager.Verify("")
	assert.Error(t, err)
}
