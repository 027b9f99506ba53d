package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
)

// MemoryUserStore keeps the identity directory in process memory. The
// mutex spans the uniqueness and room-capacity checks together with the
// insert, so concurrent provisioning cannot oversubscribe a room.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryUserStore constructs an empty in-memory directory.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) CreateStudent(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(user.ID, user.Email, ""); err != nil {
		return err
	}
	if user.Student != nil && user.Student.Room != "" {
		occupancy := 0
		for _, u := range s.users {
			if u.Student != nil && u.Student.Room == user.Student.Room {
				occupancy++
			}
		}
		if occupancy >= models.MaxRoomOccupancy {
			return apperrors.Guard("room is already fully occupied")
		}
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(user.ID, user.Email, ""); err != nil {
		return err
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[models.NormalizeUserID(id)]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return user.Clone(), nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (s *MemoryUserStore) ListStudents(_ context.Context, filter models.StudentFilter) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.User, 0)
	search := strings.ToLower(filter.Search)
	for _, u := range s.users {
		if u.Role != models.RoleStudent || u.Student == nil {
			continue
		}
		if filter.Year != "" && u.Student.Year != filter.Year {
			continue
		}
		if filter.Course != "" && !strings.Contains(strings.ToLower(u.Student.Course), strings.ToLower(filter.Course)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.ID), search) &&
			!strings.Contains(strings.ToLower(u.Student.Room), search) {
			continue
		}
		result = append(result, u.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemoryUserStore) Search(_ context.Context, query string, role models.Role, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(query)
	result := make([]*models.User, 0)
	for _, u := range s.users {
		if u.Role != role {
			continue
		}
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.ID), q) {
			continue
		}
		result = append(result, u.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return apperrors.NotFound("user")
	}
	if err := s.checkUnique("", user.Email, user.ID); err != nil {
		return err
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = models.NormalizeUserID(id)
	if _, ok := s.users[id]; !ok {
		return apperrors.NotFound("user")
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) CountInRoom(_ context.Context, room string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, u := range s.users {
		if u.Student != nil && u.Student.Room == room {
			count++
		}
	}
	return count, nil
}

func (s *MemoryUserStore) RoomOccupancy(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occupancy := make(map[string]int)
	for _, u := range s.users {
		if u.IsActive && u.Student != nil && u.Student.Room != "" {
			occupancy[u.Student.Room]++
		}
	}
	return occupancy, nil
}

// checkUnique enforces id and email uniqueness. exceptID excludes the
// record being updated from the email check; an empty id skips the id
// check.
func (s *MemoryUserStore) checkUnique(id, email, exceptID string) error {
	if id != "" {
		if _, ok := s.users[id]; ok {
			return apperrors.Conflict("user ID already exists")
		}
	}
	if email == "" {
		return nil
	}
	for _, u := range s.users {
		if u.ID == exceptID {
			continue
		}
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			return apperrors.Conflict("email already exists")
		}
	}
	return nil
}
