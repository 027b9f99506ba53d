package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
	"hostel-backend/internal/timeutil"
)

// MemoryGatePassStore keeps the ledger in process memory. The single
// mutex spans every check-and-insert, which gives the same exclusivity
// the partial unique indexes give the Postgres store.
type MemoryGatePassStore struct {
	mu     sync.RWMutex
	passes map[string]*models.GatePass
}

// NewMemoryGatePassStore constructs an empty in-memory ledger.
func NewMemoryGatePassStore() *MemoryGatePassStore {
	return &MemoryGatePassStore{passes: make(map[string]*models.GatePass)}
}

func (s *MemoryGatePassStore) Create(_ context.Context, pass *models.GatePass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.passes {
		if existing.StudentID != pass.StudentID {
			continue
		}
		if existing.Status == models.StatusPending && pass.Status == models.StatusPending {
			return apperrors.Conflict("student already has a pending gate pass")
		}
		if existing.Status == models.StatusApproved && existing.ExitStatus == models.ExitOut {
			return apperrors.Conflict("student is currently out")
		}
	}
	s.passes[pass.PassID] = pass.Clone()
	return nil
}

func (s *MemoryGatePassStore) FindByID(_ context.Context, passID string) (*models.GatePass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pass, ok := s.passes[passID]
	if !ok {
		return nil, apperrors.NotFound("gate pass")
	}
	return pass.Clone(), nil
}

func (s *MemoryGatePassStore) ListByStudent(_ context.Context, studentID string) ([]*models.GatePass, error) {
	return s.collect(func(g *models.GatePass) bool {
		return g.StudentID == studentID
	}, byCreatedDesc), nil
}

func (s *MemoryGatePassStore) ListPending(_ context.Context) ([]*models.GatePass, error) {
	return s.collect(func(g *models.GatePass) bool {
		return g.Status == models.StatusPending
	}, byCreatedDesc), nil
}

func (s *MemoryGatePassStore) ListApproved(_ context.Context) ([]*models.GatePass, error) {
	return s.collect(func(g *models.GatePass) bool {
		return g.Status == models.StatusApproved
	}, byFromDateDesc), nil
}

func (s *MemoryGatePassStore) ListCurrentlyOut(_ context.Context) ([]*models.GatePass, error) {
	return s.collect(func(g *models.GatePass) bool {
		return g.Status == models.StatusApproved && g.ExitStatus == models.ExitOut
	}, byActualOutDesc), nil
}

func (s *MemoryGatePassStore) ListFiltered(_ context.Context, filter models.GatePassFilter) ([]*models.GatePass, error) {
	studentID := models.NormalizeUserID(filter.StudentID)
	return s.collect(func(g *models.GatePass) bool {
		if filter.Status != "" && g.Status != filter.Status {
			return false
		}
		if studentID != "" && g.StudentID != studentID {
			return false
		}
		if filter.FromDate != nil && g.FromDate.Before(*filter.FromDate) {
			return false
		}
		if filter.ToDate != nil && g.FromDate.After(*filter.ToDate) {
			return false
		}
		return true
	}, byCreatedDesc), nil
}

func (s *MemoryGatePassStore) CountPending(ctx context.Context) (int, error) {
	pending, _ := s.ListPending(ctx)
	return len(pending), nil
}

func (s *MemoryGatePassStore) CountApprovedForDate(_ context.Context, date time.Time) (int, error) {
	day := timeutil.StartOfDay(date)
	matches := s.collect(func(g *models.GatePass) bool {
		return g.Status == models.StatusApproved && sameDay(g.FromDate, day)
	}, byCreatedDesc)
	return len(matches), nil
}

func (s *MemoryGatePassStore) CountByStudent(ctx context.Context, studentID string) (int, error) {
	passes, _ := s.ListByStudent(ctx, studentID)
	return len(passes), nil
}

func (s *MemoryGatePassStore) CountCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, g := range s.passes {
		if !g.CreatedAt.Before(from) && g.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryGatePassStore) HasPending(_ context.Context, studentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.passes {
		if g.StudentID == studentID && g.Status == models.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryGatePassStore) IsCurrentlyOut(_ context.Context, studentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.passes {
		if g.StudentID == studentID && g.Status == models.StatusApproved && g.ExitStatus == models.ExitOut {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryGatePassStore) Update(_ context.Context, pass *models.GatePass, fromStatus models.Status, fromExit models.ExitStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.passes[pass.PassID]
	if !ok {
		return apperrors.NotFound("gate pass")
	}
	if stored.Status != fromStatus || stored.ExitStatus != fromExit {
		return apperrors.Conflict("gate pass was modified concurrently")
	}
	s.passes[pass.PassID] = pass.Clone()
	return nil
}

func (s *MemoryGatePassStore) collect(keep func(*models.GatePass) bool, less func(a, b *models.GatePass) bool) []*models.GatePass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.GatePass, 0)
	for _, g := range s.passes {
		if keep(g) {
			result = append(result, g.Clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}

func byCreatedDesc(a, b *models.GatePass) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	// Stable tie-break so equal timestamps still order deterministically
	return strings.Compare(a.PassID, b.PassID) < 0
}

func byFromDateDesc(a, b *models.GatePass) bool {
	if !a.FromDate.Equal(b.FromDate) {
		return a.FromDate.After(b.FromDate)
	}
	return byCreatedDesc(a, b)
}

func byActualOutDesc(a, b *models.GatePass) bool {
	at, bt := a.ActualOutTime, b.ActualOutTime
	if at != nil && bt != nil && !at.Equal(*bt) {
		return at.After(*bt)
	}
	return byCreatedDesc(a, b)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
