package services

import (
	"context"
	"errors"
	"strings"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/timeutil"
)

// ErrInvalidCredentials is returned by Login for any bad id, password,
// role mismatch or deactivated account; callers must not reveal which
// check failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService manages the identity directory: authentication, student
// provisioning (with the room-capacity invariant), profiles and staff
// lookups.
type UserService struct {
	UserStore repositories.UserStore
	PassStore repositories.GatePassStore
	JWT       *auth.JWTManager
	Clock     timeutil.Clock
}

func NewUserService(userStore repositories.UserStore, passStore repositories.GatePassStore, jwtManager *auth.JWTManager, clock timeutil.Clock) *UserService {
	return &UserService{
		UserStore: userStore,
		PassStore: passStore,
		JWT:       jwtManager,
		Clock:     clock,
	}
}

// Login authenticates a user and issues an access token.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
	id := models.NormalizeUserID(req.ID)
	if id == "" || req.Password == "" || req.UserType == "" {
		return "", nil, apperrors.Validation("ID, password, and user type are required")
	}
	if !models.ValidRole(req.UserType) {
		return "", nil, apperrors.Validation("invalid user type")
	}

	user, err := s.UserStore.FindByID(ctx, id)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if user.Role != req.UserType || !user.IsActive || !user.CheckPassword(req.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.JWT.Generate(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CurrentUser resolves the acting identity for an authenticated request.
func (s *UserService) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	return s.UserStore.FindByID(ctx, id)
}

// AddStudent provisions a student. Uniqueness of id and email and the
// room-occupancy cap are enforced atomically with the insert by the
// store.
func (s *UserService) AddStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.User, error) {
	for _, field := range []struct{ name, value string }{
		{"id", req.ID},
		{"name", req.Name},
		{"password", req.Password},
		{"email", req.Email},
		{"phone", req.Phone},
		{"room", req.Room},
		{"course", req.Course},
		{"year", req.Year},
	} {
		if strings.TrimSpace(field.value) == "" {
			return nil, apperrors.Newf(apperrors.KindValidation, "%s is required", field.name)
		}
	}
	if !models.ValidEmail(req.Email) {
		return nil, apperrors.Validation("invalid email format")
	}
	if !models.ValidAcademicYear(req.Year) {
		return nil, apperrors.Validation("invalid year")
	}

	user, err := models.NewUser(req.ID, req.Name, models.RoleStudent, &models.StudentProfile{
		Room:          req.Room,
		Course:        req.Course,
		Year:          req.Year,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
	}, nil, nil)
	if err != nil {
		return nil, err
	}
	user.Email = req.Email
	user.Phone = req.Phone
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.UserStore.CreateStudent(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListStudents returns students matching the filter.
func (s *UserService) ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.User, error) {
	return s.UserStore.ListStudents(ctx, filter)
}

// UpdateStudent applies warden-side edits to a student record.
func (s *UserService) UpdateStudent(ctx context.Context, studentID string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.UserStore.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return nil, apperrors.NotFound("student")
	}
	return s.applyProfile(ctx, user, req)
}

// DeleteStudent removes a student, refusing while any gate pass still
// references them so the ledger keeps its audit trail.
func (s *UserService) DeleteStudent(ctx context.Context, studentID string) error {
	user, err := s.UserStore.FindByID(ctx, studentID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleStudent {
		return apperrors.NotFound("student")
	}
	count, err := s.PassStore.CountByStudent(ctx, user.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Guard("cannot delete student with gate pass records")
	}
	return s.UserStore.Delete(ctx, user.ID)
}

// SetStudentActive toggles a student account on or off.
func (s *UserService) SetStudentActive(ctx context.Context, studentID string, active bool) (*models.User, error) {
	user, err := s.UserStore.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return nil, apperrors.NotFound("student")
	}
	user.IsActive = active
	user.UpdatedAt = s.Clock.Now()
	if err := s.UserStore.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies self-service profile edits. Only fields that
// match the caller's role are touched.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.UserStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.applyProfile(ctx, user, req)
}

func (s *UserService) applyProfile(ctx context.Context, user *models.User, req *models.UpdateProfileRequest) (*models.User, error) {
	if req.Email != nil && *req.Email != "" {
		if !models.ValidEmail(*req.Email) {
			return nil, apperrors.Validation("invalid email format")
		}
		if existing, err := s.UserStore.FindByEmail(ctx, *req.Email); err == nil && existing.ID != user.ID {
			return nil, apperrors.Conflict("email already exists")
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	switch user.Role {
	case models.RoleStudent:
		if req.Year != nil && *req.Year != "" && !models.ValidAcademicYear(*req.Year) {
			return nil, apperrors.Validation("invalid year")
		}
		applyString(&user.Student.Course, req.Course)
		applyString(&user.Student.Year, req.Year)
		applyString(&user.Student.GuardianName, req.GuardianName)
		applyString(&user.Student.GuardianPhone, req.GuardianPhone)
	case models.RoleWarden:
		applyString(&user.Warden.Department, req.Department)
		applyString(&user.Warden.Qualification, req.Qualification)
		applyString(&user.Warden.Experience, req.Experience)
	case models.RoleSecurity:
		applyString(&user.Security.Shift, req.Shift)
		applyString(&user.Security.EmergencyContact, req.EmergencyContact)
		applyString(&user.Security.Experience, req.Experience)
	}

	user.UpdatedAt = s.Clock.Now()
	if err := s.UserStore.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before setting the new
// one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) error {
	user, err := s.UserStore.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.CurrentPassword) {
		return apperrors.Validation("current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	user.UpdatedAt = s.Clock.Now()
	return s.UserStore.Update(ctx, user)
}

// SearchUsers is the warden/security autocomplete lookup.
func (s *UserService) SearchUsers(ctx context.Context, query string, role models.Role, limit int) ([]*models.User, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return nil, apperrors.Validation("search query must be at least 2 characters")
	}
	if !models.ValidRole(role) {
		return nil, apperrors.Validation("invalid user type")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.UserStore.Search(ctx, query, role, limit)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
