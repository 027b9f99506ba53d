package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/config"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/timeutil"
)

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(&config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpiryHours: 1},
	})
}

func newUserTestEnv(t *testing.T) (*UserService, *repositories.MemoryUserStore, *repositories.MemoryGatePassStore) {
	t.Helper()
	clock := newFakeClock(time.Date(2026, 3, 10, 8, 0, 0, 0, timeutil.Location))
	users := repositories.NewMemoryUserStore()
	passes := repositories.NewMemoryGatePassStore()
	return NewUserService(users, passes, testJWTManager(), clock), users, passes
}

func validStudentRequest(id string) *models.CreateStudentRequest {
	return &models.CreateStudentRequest{
		ID:            id,
		Name:          "Asha Verma",
		Password:      "secret123",
		Email:         id + "@hostel.edu",
		Phone:         "9876500000",
		Room:          "A-101",
		Course:        "B.Tech CSE",
		Year:          "2nd Year",
		GuardianName:  "R Verma",
		GuardianPhone: "9876511111",
	}
}

func TestAddStudent(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	student, err := svc.AddStudent(ctx, validStudentRequest("stu001"))
	require.NoError(t, err)
	assert.Equal(t, "STU001", student.ID)
	assert.Equal(t, models.RoleStudent, student.Role)
	require.NotNil(t, student.Student)
	assert.Equal(t, "A-101", student.Student.Room)
	assert.True(t, student.CheckPassword("secret123"))
}

func TestAddStudentValidation(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	missing := validStudentRequest("STU001")
	missing.Room = ""
	_, err := svc.AddStudent(ctx, missing)
	require.Error(t, err)
	assert.Equal(t, "room is required", err.Error())

	badEmail := validStudentRequest("STU001")
	badEmail.Email = "not-an-email"
	_, err = svc.AddStudent(ctx, badEmail)
	assert.Equal(t, "invalid email format", err.Error())

	badYear := validStudentRequest("STU001")
	badYear.Year = "5th Year"
	_, err = svc.AddStudent(ctx, badYear)
	assert.Equal(t, "invalid year", err.Error())

	shortPassword := validStudentRequest("STU001")
	shortPassword.Password = "abc"
	_, err = svc.AddStudent(ctx, shortPassword)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAddStudentRoomCapacity(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= models.MaxRoomOccupancy; i++ {
		_, err := svc.AddStudent(ctx, validStudentRequest(fmt.Sprintf("STU%03d", i)))
		require.NoError(t, err)
	}

	_, err := svc.AddStudent(ctx, validStudentRequest("STU099"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGuardViolation))
	assert.Equal(t, "room is already fully occupied", err.Error())
}

func TestLogin(t *testing.T) {
	svc, users, _ := newUserTestEnv(t)
	ctx := context.Background()

	_, err := svc.AddStudent(ctx, validStudentRequest("STU001"))
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, &models.LoginRequest{
		ID: "stu001", Password: "secret123", UserType: models.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "STU001", user.ID)

	// Wrong password, wrong role and unknown id all fail the same way
	_, _, err = svc.Login(ctx, &models.LoginRequest{ID: "STU001", Password: "wrong", UserType: models.RoleStudent})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, &models.LoginRequest{ID: "STU001", Password: "secret123", UserType: models.RoleWarden})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, &models.LoginRequest{ID: "GHOST", Password: "secret123", UserType: models.RoleStudent})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Deactivated accounts cannot log in
	stored, err := users.FindByID(ctx, "STU001")
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, users.Update(ctx, stored))
	_, _, err = svc.Login(ctx, &models.LoginRequest{ID: "STU001", Password: "secret123", UserType: models.RoleStudent})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginValidation(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, &models.LoginRequest{ID: "", Password: "x", UserType: models.RoleStudent})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, _, err = svc.Login(ctx, &models.LoginRequest{ID: "STU001", Password: "x", UserType: "admin"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestDeleteStudentWithHistory(t *testing.T) {
	svc, _, passes := newUserTestEnv(t)
	ctx := context.Background()

	student, err := svc.AddStudent(ctx, validStudentRequest("STU001"))
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, timeutil.Location)
	require.NoError(t, passes.Create(ctx, &models.GatePass{
		PassID:     "p1",
		StudentID:  student.ID,
		Status:     models.StatusRejected,
		ExitStatus: models.ExitIn,
		FromDate:   timeutil.StartOfDay(now),
		CreatedAt:  now,
	}))

	err = svc.DeleteStudent(ctx, "STU001")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindGuardViolation))
	assert.Equal(t, "cannot delete student with gate pass records", err.Error())

	// A student with no ledger history can be removed
	_, err = svc.AddStudent(ctx, validStudentRequest("STU002"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStudent(ctx, "STU002"))
	_, err = svc.CurrentUser(ctx, "STU002")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	_, err := svc.AddStudent(ctx, validStudentRequest("STU001"))
	require.NoError(t, err)

	newPhone := "9999900000"
	newCourse := "B.Tech ECE"
	updated, err := svc.UpdateProfile(ctx, "STU001", &models.UpdateProfileRequest{
		Phone:  &newPhone,
		Course: &newCourse,
	})
	require.NoError(t, err)
	assert.Equal(t, "9999900000", updated.Phone)
	assert.Equal(t, "B.Tech ECE", updated.Student.Course)

	// Changing to another account's email is refused
	_, err = svc.AddStudent(ctx, func() *models.CreateStudentRequest {
		r := validStudentRequest("STU002")
		r.Room = "A-102"
		return r
	}())
	require.NoError(t, err)

	taken := "STU002@hostel.edu"
	_, err = svc.UpdateProfile(ctx, "STU001", &models.UpdateProfileRequest{Email: &taken})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	_, err := svc.AddStudent(ctx, validStudentRequest("STU001"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, "STU001", &models.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret",
	})
	require.Error(t, err)
	assert.Equal(t, "current password is incorrect", err.Error())

	require.NoError(t, svc.ChangePassword(ctx, "STU001", &models.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret",
	}))

	_, _, err = svc.Login(ctx, &models.LoginRequest{ID: "STU001", Password: "newsecret", UserType: models.RoleStudent})
	assert.NoError(t, err)
}

func TestSetStudentActive(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	_, err := svc.AddStudent(ctx, validStudentRequest("STU001"))
	require.NoError(t, err)

	disabled, err := svc.SetStudentActive(ctx, "STU001", false)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)

	enabled, err := svc.SetStudentActive(ctx, "STU001", true)
	require.NoError(t, err)
	assert.True(t, enabled.IsActive)
}

func TestSearchUsers(t *testing.T) {
	svc, _, _ := newUserTestEnv(t)
	ctx := context.Background()

	req := validStudentRequest("STU001")
	_, err := svc.AddStudent(ctx, req)
	require.NoError(t, err)

	_, err = svc.SearchUsers(ctx, "a", models.RoleStudent, 10)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	found, err := svc.SearchUsers(ctx, "asha", models.RoleStudent, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "STU001", found[0].ID)
}
