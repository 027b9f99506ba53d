package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/apperrors"
)

func TestNewUserRequiresMatchingProfile(t *testing.T) {
	student, err := NewUser("stu001", "Asha Verma", RoleStudent, &StudentProfile{Room: "A-101"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "STU001", student.ID)
	assert.True(t, student.IsActive)
	assert.Equal(t, "A-101", student.Room())

	_, err = NewUser("stu002", "No Profile", RoleStudent, nil, nil, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = NewUser("wrd001", "Wrong Profile", RoleWarden, &StudentProfile{}, nil, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = NewUser("x", "Bad Role", Role("janitor"), nil, nil, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSetPassword(t *testing.T) {
	user, err := NewUser("stu001", "Asha", RoleStudent, &StudentProfile{}, nil, nil)
	require.NoError(t, err)

	err = user.SetPassword("short")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	require.NoError(t, user.SetPassword("secret123"))
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestNormalizeUserID(t *testing.T) {
	assert.Equal(t, "STU001", NormalizeUserID("  stu001 "))
	assert.Equal(t, "", NormalizeUserID("   "))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("asha@hostel.edu"))
	assert.True(t, ValidEmail("a.b+c@x.co.in"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("missing@domain"))
}

func TestValidAcademicYear(t *testing.T) {
	assert.True(t, ValidAcademicYear("1st Year"))
	assert.True(t, ValidAcademicYear("4th Year"))
	assert.False(t, ValidAcademicYear("5th Year"))
	assert.False(t, ValidAcademicYear(""))
}
