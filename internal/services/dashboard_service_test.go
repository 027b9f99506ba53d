package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/config"
	"hostel-backend/internal/models"
)

func newDashboardEnv(t *testing.T) (*DashboardService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	rooms := config.RoomsConfig{Prefix: "A-", First: 101, Last: 103}
	svc := NewDashboardService(env.users, env.passes, env.service, rooms, env.clock)
	return svc, env
}

func TestWardenDashboardCounts(t *testing.T) {
	svc, env := newDashboardEnv(t)
	ctx := context.Background()

	second := testStudent(t, "STU002", "Rohan Gupta", "A-102")
	second.Student.Year = "1st Year"
	require.NoError(t, env.users.CreateStudent(ctx, second))

	// One pending, one approved and out
	_, err := env.service.RequestPass(ctx, env.student, validRequest())
	require.NoError(t, err)
	outPass, err := env.service.RequestPass(ctx, second, validRequest())
	require.NoError(t, err)
	_, err = env.service.Approve(ctx, env.warden, outPass.PassID, nil)
	require.NoError(t, err)
	_, err = env.service.MarkExit(ctx, outPass.PassID, nil)
	require.NoError(t, err)

	dashboard, err := svc.WardenDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.Students.Total)
	assert.Equal(t, 1, dashboard.Students.FirstYear)
	assert.Equal(t, 1, dashboard.Students.SecondYear)
	assert.Equal(t, 1, dashboard.Passes.Pending)
	assert.Equal(t, 1, dashboard.Passes.Approved)
	assert.Equal(t, 1, dashboard.Passes.CurrentlyOut)
	require.Len(t, dashboard.RecentRequests, 1)
	assert.Equal(t, env.student.ID, dashboard.RecentRequests[0].StudentID)
}

func TestWardenDashboardExcludesDeactivatedStudents(t *testing.T) {
	svc, env := newDashboardEnv(t)
	ctx := context.Background()

	env.student.IsActive = false
	require.NoError(t, env.users.Update(ctx, env.student))

	dashboard, err := svc.WardenDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, dashboard.Students.Total)
}

func TestAvailableRooms(t *testing.T) {
	svc, env := newDashboardEnv(t)
	ctx := context.Background()

	// Fill A-102 to capacity; A-101 holds one student, A-103 is empty
	for i := 0; i < models.MaxRoomOccupancy; i++ {
		id := string(rune('B'+i)) + "00"
		require.NoError(t, env.users.CreateStudent(ctx, testStudent(t, "STU"+id, "Resident "+id, "A-102")))
	}

	rooms, err := svc.AvailableRooms(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, rooms.TotalRooms)
	assert.Equal(t, 2, rooms.AvailableCount)
	assert.Equal(t, []string{"A-101", "A-103"}, rooms.AvailableRooms)
	assert.Equal(t, 1, rooms.Occupancy["A-101"])
	assert.Equal(t, models.MaxRoomOccupancy, rooms.Occupancy["A-102"])
}

func TestDashboardForStudent(t *testing.T) {
	svc, env := newDashboardEnv(t)
	ctx := context.Background()

	rec, err := env.service.RequestPass(ctx, env.student, validRequest())
	require.NoError(t, err)
	_, err = env.service.Reject(ctx, env.warden, rec.PassID, nil)
	require.NoError(t, err)

	dashboard, err := svc.ForUser(ctx, env.student)
	require.NoError(t, err)

	require.NotNil(t, dashboard.Student)
	assert.Nil(t, dashboard.Warden)
	assert.Equal(t, models.RoleStudent, dashboard.UserType)
	assert.Equal(t, 1, dashboard.Student.TotalPasses)
	assert.Equal(t, 1, dashboard.Student.RejectedPasses)
	assert.False(t, dashboard.Student.CurrentlyOut)
	require.Len(t, dashboard.RecentPasses, 1)
	assert.Equal(t, rec.PassID, dashboard.RecentPasses[0].PassID)
}

func TestDashboardForWardenAndSecurity(t *testing.T) {
	svc, env := newDashboardEnv(t)
	ctx := context.Background()

	rec, err := env.service.RequestPass(ctx, env.student, validRequest())
	require.NoError(t, err)
	_, err = env.service.Approve(ctx, env.warden, rec.PassID, nil)
	require.NoError(t, err)
	_, err = env.service.MarkExit(ctx, rec.PassID, nil)
	require.NoError(t, err)

	dashboard, err := svc.ForUser(ctx, env.warden)
	require.NoError(t, err)
	require.NotNil(t, dashboard.Warden)
	assert.Equal(t, 0, dashboard.Warden.PendingRequests)
	assert.Equal(t, 1, dashboard.Warden.TodayApproved)
	assert.Equal(t, 1, dashboard.Warden.CurrentlyOut)
	assert.Empty(t, dashboard.RecentPasses)

	security, err := models.NewUser("SEC001", "Gate Desk", models.RoleSecurity, nil, nil, &models.SecurityProfile{Shift: "day"})
	require.NoError(t, err)
	dashboard, err = svc.ForUser(ctx, security)
	require.NoError(t, err)
	require.NotNil(t, dashboard.Security)
	assert.Equal(t, 1, dashboard.Security.TodayPasses)
	assert.Equal(t, 1, dashboard.Security.CurrentlyOut)
}

func TestStatsForStudent(t *testing.T) {
	svc, env := newDashboardEnv(t)
	ctx := context.Background()

	// Two decided passes this month: one approved and returned, one rejected
	first, err := env.service.RequestPass(ctx, env.student, validRequest())
	require.NoError(t, err)
	_, err = env.service.Approve(ctx, env.warden, first.PassID, nil)
	require.NoError(t, err)
	_, err = env.service.MarkExit(ctx, first.PassID, nil)
	require.NoError(t, err)
	env.clock.Advance(2 * time.Hour)
	_, err = env.service.MarkReturn(ctx, first.PassID, nil)
	require.NoError(t, err)

	req := validRequest()
	req.FromDate = "2026-03-11"
	req.ReturnDate = "2026-03-11"
	second, err := env.service.RequestPass(ctx, env.student, req)
	require.NoError(t, err)
	_, err = env.service.Reject(ctx, env.warden, second.PassID, nil)
	require.NoError(t, err)

	stats, err := svc.StatsForUser(ctx, env.student)
	require.NoError(t, err)

	require.NotNil(t, stats.Student)
	assert.Equal(t, 2, stats.Student.TotalPasses)
	assert.Equal(t, 1, stats.Student.ApprovedPasses)
	assert.Equal(t, 1, stats.Student.RejectedPasses)
	assert.Equal(t, 2, stats.Student.MonthlyPasses)
	assert.InDelta(t, 50.0, stats.Student.ApprovalRate, 0.001)
	assert.False(t, stats.Student.CurrentlyOut)
}

func TestStatsForWardenAndSecurity(t *testing.T) {
	svc, env := newDashboardEnv(t)
	ctx := context.Background()

	rec, err := env.service.RequestPass(ctx, env.student, validRequest())
	require.NoError(t, err)
	_, err = env.service.Approve(ctx, env.warden, rec.PassID, nil)
	require.NoError(t, err)
	_, err = env.service.MarkExit(ctx, rec.PassID, nil)
	require.NoError(t, err)

	stats, err := svc.StatsForUser(ctx, env.warden)
	require.NoError(t, err)
	require.NotNil(t, stats.Warden)
	assert.Equal(t, 0, stats.Warden.PendingRequests)
	assert.Equal(t, 1, stats.Warden.TodayPasses)
	assert.Equal(t, 1, stats.Warden.MonthlyPasses)
	assert.Equal(t, 1, stats.Warden.TotalStudents)
	assert.Equal(t, 1, stats.Warden.CurrentlyOut)

	security, err := models.NewUser("SEC001", "Gate Desk", models.RoleSecurity, nil, nil, &models.SecurityProfile{Shift: "day"})
	require.NoError(t, err)

	stats, err = svc.StatsForUser(ctx, security)
	require.NoError(t, err)
	require.NotNil(t, stats.Security)
	assert.Equal(t, 1, stats.Security.TodayPasses)
	assert.Equal(t, 1, stats.Security.CurrentlyOut)
	assert.Equal(t, 1, stats.Security.TodayExits)
	assert.Equal(t, 0, stats.Security.TodayReturns)

	// After the student returns the exit no longer counts as out
	env.clock.Advance(time.Hour)
	_, err = env.service.MarkReturn(ctx, rec.PassID, nil)
	require.NoError(t, err)

	stats, err = svc.StatsForUser(ctx, security)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Security.TodayExits)
	assert.Equal(t, 1, stats.Security.TodayReturns)
	assert.Equal(t, 0, stats.Security.CurrentlyOut)
}
