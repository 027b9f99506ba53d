package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/timeutil"
)

func notificationIDs(notifications []models.Notification) []string {
	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestNotificationsForStudent(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 8, 0, 0, 0, timeutil.Location))
	users := repositories.NewMemoryUserStore()
	passes := repositories.NewMemoryGatePassStore()
	gatepass := NewGatePassService(passes, users, clock)
	svc := NewNotificationService(passes, clock)

	student := testStudent(t, "STU001", "Asha Verma", "A-101")
	warden := testWarden(t, "WRD001", "Dr. Mehta")
	ctx := context.Background()
	require.NoError(t, users.CreateStudent(ctx, student))
	require.NoError(t, users.Create(ctx, warden))

	// No passes, no noise
	notifications, err := svc.ForUser(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	// A rejected pass and a fresh pending one
	rec, err := gatepass.RequestPass(ctx, student, validRequest())
	require.NoError(t, err)
	_, err = gatepass.Reject(ctx, warden, rec.PassID, nil)
	require.NoError(t, err)
	_, err = gatepass.RequestPass(ctx, student, validRequest())
	require.NoError(t, err)

	notifications, err = svc.ForUser(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, []string{"rejected_passes", "pending_passes"}, notificationIDs(notifications))
	assert.Equal(t, "You have 1 rejected gate pass(es).", notifications[0].Message)
}

func TestNotificationsOverdueStudent(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 8, 0, 0, 0, timeutil.Location))
	users := repositories.NewMemoryUserStore()
	passes := repositories.NewMemoryGatePassStore()
	gatepass := NewGatePassService(passes, users, clock)
	svc := NewNotificationService(passes, clock)

	student := testStudent(t, "STU001", "Asha Verma", "A-101")
	warden := testWarden(t, "WRD001", "Dr. Mehta")
	ctx := context.Background()
	require.NoError(t, users.CreateStudent(ctx, student))
	require.NoError(t, users.Create(ctx, warden))

	rec, err := gatepass.RequestPass(ctx, student, validRequest())
	require.NoError(t, err)
	_, err = gatepass.Approve(ctx, warden, rec.PassID, nil)
	require.NoError(t, err)
	_, err = gatepass.MarkExit(ctx, rec.PassID, nil)
	require.NoError(t, err)

	// Still before the requested 18:00 return
	notifications, err := svc.ForUser(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	clock.Advance(12 * time.Hour)
	notifications, err = svc.ForUser(ctx, student)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "overdue_return", notifications[0].ID)
	assert.Equal(t, "warning", notifications[0].Type)

	// The warden sees the same student counted as overdue
	wardenNotifications, err := svc.ForUser(ctx, warden)
	require.NoError(t, err)
	require.Len(t, wardenNotifications, 1)
	assert.Equal(t, "overdue_students", wardenNotifications[0].ID)
	assert.Equal(t, "1 student(s) are overdue for return.", wardenNotifications[0].Message)
}

func TestNotificationsForWardenAndSecurity(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 10, 8, 0, 0, 0, timeutil.Location))
	users := repositories.NewMemoryUserStore()
	passes := repositories.NewMemoryGatePassStore()
	gatepass := NewGatePassService(passes, users, clock)
	svc := NewNotificationService(passes, clock)

	student := testStudent(t, "STU001", "Asha Verma", "A-101")
	warden := testWarden(t, "WRD001", "Dr. Mehta")
	guard, err := models.NewUser("SEC001", "Gate Desk", models.RoleSecurity, nil, nil, &models.SecurityProfile{Shift: "day"})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, users.CreateStudent(ctx, student))
	require.NoError(t, users.Create(ctx, warden))
	require.NoError(t, users.Create(ctx, guard))

	rec, err := gatepass.RequestPass(ctx, student, validRequest())
	require.NoError(t, err)

	wardenNotifications, err := svc.ForUser(ctx, warden)
	require.NoError(t, err)
	require.Len(t, wardenNotifications, 1)
	assert.Equal(t, "pending_requests", wardenNotifications[0].ID)

	// Security sees nothing until a pass is approved for today
	securityNotifications, err := svc.ForUser(ctx, guard)
	require.NoError(t, err)
	assert.Empty(t, securityNotifications)

	_, err = gatepass.Approve(ctx, warden, rec.PassID, nil)
	require.NoError(t, err)

	securityNotifications, err = svc.ForUser(ctx, guard)
	require.NoError(t, err)
	require.Len(t, securityNotifications, 1)
	assert.Equal(t, "today_passes", securityNotifications[0].ID)
	assert.Equal(t, "1 gate pass(es) approved for today.", securityNotifications[0].Message)
}
