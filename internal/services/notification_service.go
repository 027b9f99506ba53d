package services

import (
	"context"
	"fmt"

	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/timeutil"
)

// NotificationService derives transient advisory messages from current
// ledger state. Nothing is stored and nothing is delivered; each call
// recomputes the conditions from scratch.
type NotificationService struct {
	PassStore repositories.GatePassStore
	Clock     timeutil.Clock
}

func NewNotificationService(passStore repositories.GatePassStore, clock timeutil.Clock) *NotificationService {
	return &NotificationService{
		PassStore: passStore,
		Clock:     clock,
	}
}

// ForUser derives the notifications visible to the given user.
func (s *NotificationService) ForUser(ctx context.Context, user *models.User) ([]models.Notification, error) {
	switch user.Role {
	case models.RoleStudent:
		return s.forStudent(ctx, user.ID)
	case models.RoleWarden:
		return s.forWarden(ctx)
	case models.RoleSecurity:
		return s.forSecurity(ctx)
	}
	return []models.Notification{}, nil
}

func (s *NotificationService) forStudent(ctx context.Context, studentID string) ([]models.Notification, error) {
	passes, err := s.PassStore.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()

	overdue, rejected, pending := 0, 0, 0
	for _, pass := range passes {
		if pass.IsOverdue(now) {
			overdue++
		}
		switch pass.Status {
		case models.StatusRejected:
			rejected++
		case models.StatusPending:
			pending++
		}
	}

	notifications := make([]models.Notification, 0, 3)
	if overdue > 0 {
		notifications = append(notifications, models.Notification{
			ID:        "overdue_return",
			Type:      "warning",
			Title:     "Overdue Return",
			Message:   fmt.Sprintf("You have %d overdue gate pass(es). Please return to hostel.", overdue),
			Timestamp: now,
		})
	}
	if rejected > 0 {
		notifications = append(notifications, models.Notification{
			ID:        "rejected_passes",
			Type:      "error",
			Title:     "Rejected Gate Passes",
			Message:   fmt.Sprintf("You have %d rejected gate pass(es).", rejected),
			Timestamp: now,
		})
	}
	if pending > 0 {
		notifications = append(notifications, models.Notification{
			ID:        "pending_passes",
			Type:      "info",
			Title:     "Pending Gate Passes",
			Message:   fmt.Sprintf("You have %d gate pass(es) awaiting approval.", pending),
			Timestamp: now,
		})
	}
	return notifications, nil
}

func (s *NotificationService) forWarden(ctx context.Context) ([]models.Notification, error) {
	now := s.Clock.Now()
	notifications := make([]models.Notification, 0, 2)

	pending, err := s.PassStore.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		notifications = append(notifications, models.Notification{
			ID:        "pending_requests",
			Type:      "info",
			Title:     "Pending Requests",
			Message:   fmt.Sprintf("You have %d pending gate pass request(s) to review.", pending),
			Timestamp: now,
		})
	}

	out, err := s.PassStore.ListCurrentlyOut(ctx)
	if err != nil {
		return nil, err
	}
	overdue := 0
	for _, pass := range out {
		if pass.IsOverdue(now) {
			overdue++
		}
	}
	if overdue > 0 {
		notifications = append(notifications, models.Notification{
			ID:        "overdue_students",
			Type:      "warning",
			Title:     "Overdue Students",
			Message:   fmt.Sprintf("%d student(s) are overdue for return.", overdue),
			Timestamp: now,
		})
	}
	return notifications, nil
}

func (s *NotificationService) forSecurity(ctx context.Context) ([]models.Notification, error) {
	now := s.Clock.Now()
	today, err := s.PassStore.CountApprovedForDate(ctx, now)
	if err != nil {
		return nil, err
	}
	notifications := make([]models.Notification, 0, 1)
	if today > 0 {
		notifications = append(notifications, models.Notification{
			ID:        "today_passes",
			Type:      "info",
			Title:     "Today's Gate Passes",
			Message:   fmt.Sprintf("%d gate pass(es) approved for today.", today),
			Timestamp: now,
		})
	}
	return notifications, nil
}
