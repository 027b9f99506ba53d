package models

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hostel-backend/internal/apperrors"
)

// Role identifies which side of the gate-pass workflow a user acts on.
type Role string

const (
	RoleStudent  Role = "student"  // Requests gate passes
	RoleWarden   Role = "warden"   // Approves or rejects requests
	RoleSecurity Role = "security" // Marks actual exit and return at the gate
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	return r == RoleStudent || r == RoleWarden || r == RoleSecurity
}

// StudentProfile carries the fields that only exist for students.
type StudentProfile struct {
	Room          string `json:"room"`
	Course        string `json:"course"`
	Year          string `json:"year"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
}

// WardenProfile carries warden-specific fields.
type WardenProfile struct {
	Department    string `json:"department"`
	Qualification string `json:"qualification"`
	Experience    string `json:"experience"`
}

// SecurityProfile carries security-personnel fields.
type SecurityProfile struct {
	Shift            string `json:"shift"`
	EmergencyContact string `json:"emergency_contact"`
	Experience       string `json:"experience"`
}

// User is a hostel resident or staff member. The role is fixed at
// creation; exactly one of the profile pointers is set, and it matches
// the role, so callers never have to guard individual field access with
// a role check.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"user_type"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Student  *StudentProfile  `json:"student,omitempty"`
	Warden   *WardenProfile   `json:"warden,omitempty"`
	Security *SecurityProfile `json:"security,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeUserID uppercases and trims a user identifier the way login
// and provisioning expect it.
func NormalizeUserID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NewUser builds a user with a role-matching profile. The profile for
// the given role must be non-nil and the other two nil.
func NewUser(id, name string, role Role, student *StudentProfile, warden *WardenProfile, security *SecurityProfile) (*User, error) {
	if !ValidRole(role) {
		return nil, apperrors.Validation("invalid user type")
	}
	switch role {
	case RoleStudent:
		if student == nil || warden != nil || security != nil {
			return nil, apperrors.Validation("student profile required for student role")
		}
	case RoleWarden:
		if warden == nil || student != nil || security != nil {
			return nil, apperrors.Validation("warden profile required for warden role")
		}
	case RoleSecurity:
		if security == nil || student != nil || warden != nil {
			return nil, apperrors.Validation("security profile required for security role")
		}
	}
	return &User{
		ID:       NormalizeUserID(id),
		Name:     name,
		Role:     role,
		IsActive: true,
		Student:  student,
		Warden:   warden,
		Security: security,
	}, nil
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(password string) error {
	if len(password) < 6 {
		return apperrors.Validation("password must be at least 6 characters long")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plain-text password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Clone returns a copy whose role profile is duplicated as well, so
// mutating the clone never writes through to the original.
func (u *User) Clone() *User {
	copied := *u
	if u.Student != nil {
		p := *u.Student
		copied.Student = &p
	}
	if u.Warden != nil {
		p := *u.Warden
		copied.Warden = &p
	}
	if u.Security != nil {
		p := *u.Security
		copied.Security = &p
	}
	return &copied
}

// Room returns the student's room number, or "" for staff.
func (u *User) Room() string {
	if u.Student != nil {
		return u.Student.Room
	}
	return ""
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Year   string
	Course string
	Search string // Matches name, id or room, case-insensitive
}

// CreateStudentRequest is the provisioning payload (warden only).
type CreateStudentRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Room          string `json:"room"`
	Course        string `json:"course"`
	Year          string `json:"year"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
}

// UpdateProfileRequest carries the self-service profile fields. Only
// the fields matching the caller's role are applied.
type UpdateProfileRequest struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Course           *string `json:"course"`
	Year             *string `json:"year"`
	GuardianName     *string `json:"guardian_name"`
	GuardianPhone    *string `json:"guardian_phone"`
	Department       *string `json:"department"`
	Qualification    *string `json:"qualification"`
	Experience       *string `json:"experience"`
	Shift            *string `json:"shift"`
	EmergencyContact *string `json:"emergency_contact"`
}

// ChangePasswordRequest carries a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// LoginRequest is the authentication payload.
type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	UserType Role   `json:"user_type"`
}

// MaxRoomOccupancy is the hard cap on students per room.
const MaxRoomOccupancy = 4

// AcademicYears are the accepted values for a student's year field.
var AcademicYears = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}

// ValidAcademicYear reports whether year is an accepted value.
func ValidAcademicYear(year string) bool {
	for _, y := range AcademicYears {
		if y == year {
			return true
		}
	}
	return false
}
