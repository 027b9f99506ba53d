package services

import (
	"context"
	"math"
	"sort"
	"time"

	"hostel-backend/internal/config"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/timeutil"
)

// DashboardService assembles the aggregate views behind the dashboard
// and statistics endpoints. It only reads; every number is recomputed
// from the stores on each request.
type DashboardService struct {
	UserStore repositories.UserStore
	PassStore repositories.GatePassStore
	Passes    *GatePassService
	Rooms     config.RoomsConfig
	Clock     timeutil.Clock
}

func NewDashboardService(
	userStore repositories.UserStore,
	passStore repositories.GatePassStore,
	passes *GatePassService,
	rooms config.RoomsConfig,
	clock timeutil.Clock,
) *DashboardService {
	return &DashboardService{
		UserStore: userStore,
		PassStore: passStore,
		Passes:    passes,
		Rooms:     rooms,
		Clock:     clock,
	}
}

const recentRequestLimit = 10

// WardenDashboard builds the hostel-wide overview: active student
// population by year, pass counts by state, and the newest pending
// requests.
func (s *DashboardService) WardenDashboard(ctx context.Context) (*models.WardenDashboard, error) {
	students, err := s.activeStudentCounts(ctx)
	if err != nil {
		return nil, err
	}
	passes, err := s.passCounts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Passes.PendingRequests(ctx)
	if err != nil {
		return nil, err
	}
	if len(recent) > recentRequestLimit {
		recent = recent[:recentRequestLimit]
	}
	return &models.WardenDashboard{
		Students:       students,
		Passes:         passes,
		RecentRequests: recent,
	}, nil
}

// AvailableRooms reports the configured rooms that still have space
// under the occupancy limit, with the current count per occupied room.
func (s *DashboardService) AvailableRooms(ctx context.Context) (*models.RoomAvailability, error) {
	occupancy, err := s.UserStore.RoomOccupancy(ctx)
	if err != nil {
		return nil, err
	}
	all := s.Rooms.All()
	available := make([]string, 0, len(all))
	for _, room := range all {
		if occupancy[room] < models.MaxRoomOccupancy {
			available = append(available, room)
		}
	}
	sort.Strings(available)
	return &models.RoomAvailability{
		AvailableRooms: available,
		Occupancy:      occupancy,
		TotalRooms:     len(all),
		AvailableCount: len(available),
	}, nil
}

// ForUser builds the landing view for the given user: their record
// plus the summary matching their role. Students also get their five
// most recent passes.
func (s *DashboardService) ForUser(ctx context.Context, user *models.User) (*models.Dashboard, error) {
	dashboard := &models.Dashboard{User: user, UserType: user.Role}

	switch user.Role {
	case models.RoleStudent:
		records, err := s.Passes.StudentPasses(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		summary := summarizePasses(records)
		dashboard.Student = &summary
		if len(records) > 5 {
			records = records[:5]
		}
		dashboard.RecentPasses = records
	case models.RoleWarden:
		pending, err := s.PassStore.CountPending(ctx)
		if err != nil {
			return nil, err
		}
		todayApproved, err := s.PassStore.CountApprovedForDate(ctx, s.Clock.Now())
		if err != nil {
			return nil, err
		}
		out, err := s.PassStore.ListCurrentlyOut(ctx)
		if err != nil {
			return nil, err
		}
		dashboard.Warden = &models.WardenSummary{
			PendingRequests: pending,
			TodayApproved:   todayApproved,
			CurrentlyOut:    len(out),
		}
	case models.RoleSecurity:
		todayPasses, err := s.PassStore.CountApprovedForDate(ctx, s.Clock.Now())
		if err != nil {
			return nil, err
		}
		out, err := s.PassStore.ListCurrentlyOut(ctx)
		if err != nil {
			return nil, err
		}
		dashboard.Security = &models.SecuritySummary{
			TodayPasses:  todayPasses,
			CurrentlyOut: len(out),
		}
	}
	return dashboard, nil
}

// StatsForUser builds the role-specific statistics view, including
// counts for the current calendar month.
func (s *DashboardService) StatsForUser(ctx context.Context, user *models.User) (*models.Stats, error) {
	stats := &models.Stats{UserType: user.Role}
	now := s.Clock.Now().In(timeutil.Location)
	today := timeutil.StartOfDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, timeutil.Location)
	monthEnd := monthStart.AddDate(0, 1, 0)

	switch user.Role {
	case models.RoleStudent:
		records, err := s.Passes.StudentPasses(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		monthly := 0
		for _, r := range records {
			if !r.CreatedAt.Before(monthStart) && r.CreatedAt.Before(monthEnd) {
				monthly++
			}
		}
		summary := summarizePasses(records)
		rate := 0.0
		if summary.TotalPasses > 0 {
			rate = math.Round(float64(summary.ApprovedPasses)/float64(summary.TotalPasses)*10000) / 100
		}
		stats.Student = &models.StudentStats{
			StudentSummary: summary,
			MonthlyPasses:  monthly,
			ApprovalRate:   rate,
		}
	case models.RoleWarden:
		pending, err := s.PassStore.CountPending(ctx)
		if err != nil {
			return nil, err
		}
		todayPasses, err := s.PassStore.ListFiltered(ctx, models.GatePassFilter{
			FromDate: &today, ToDate: &today,
		})
		if err != nil {
			return nil, err
		}
		monthly, err := s.PassStore.CountCreatedBetween(ctx, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		students, err := s.activeStudentCounts(ctx)
		if err != nil {
			return nil, err
		}
		out, err := s.PassStore.ListCurrentlyOut(ctx)
		if err != nil {
			return nil, err
		}
		stats.Warden = &models.WardenStats{
			PendingRequests: pending,
			TodayPasses:     len(todayPasses),
			MonthlyPasses:   monthly,
			TotalStudents:   students.Total,
			CurrentlyOut:    len(out),
		}
	case models.RoleSecurity:
		todayApproved, err := s.PassStore.ListFiltered(ctx, models.GatePassFilter{
			Status: models.StatusApproved, FromDate: &today, ToDate: &today,
		})
		if err != nil {
			return nil, err
		}
		out, err := s.PassStore.ListCurrentlyOut(ctx)
		if err != nil {
			return nil, err
		}
		exits, returns := 0, 0
		for _, g := range todayApproved {
			if g.ExitStatus == models.ExitOut {
				exits++
			}
			if g.ActualReturnDate != nil && g.ActualReturnDate.Equal(today) {
				returns++
			}
		}
		stats.Security = &models.SecurityStats{
			TodayPasses:  len(todayApproved),
			CurrentlyOut: len(out),
			TodayExits:   exits,
			TodayReturns: returns,
		}
	}
	return stats, nil
}

func (s *DashboardService) activeStudentCounts(ctx context.Context) (models.StudentYearCounts, error) {
	students, err := s.UserStore.ListStudents(ctx, models.StudentFilter{})
	if err != nil {
		return models.StudentYearCounts{}, err
	}
	counts := models.StudentYearCounts{}
	for _, u := range students {
		if !u.IsActive || u.Student == nil {
			continue
		}
		counts.Total++
		switch u.Student.Year {
		case "1st Year":
			counts.FirstYear++
		case "2nd Year":
			counts.SecondYear++
		case "3rd Year":
			counts.ThirdYear++
		case "4th Year":
			counts.FourthYear++
		}
	}
	return counts, nil
}

func (s *DashboardService) passCounts(ctx context.Context) (models.PassCounts, error) {
	pending, err := s.PassStore.CountPending(ctx)
	if err != nil {
		return models.PassCounts{}, err
	}
	approved, err := s.PassStore.ListApproved(ctx)
	if err != nil {
		return models.PassCounts{}, err
	}
	out, err := s.PassStore.ListCurrentlyOut(ctx)
	if err != nil {
		return models.PassCounts{}, err
	}
	return models.PassCounts{
		Pending:      pending,
		Approved:     len(approved),
		CurrentlyOut: len(out),
	}, nil
}

func summarizePasses(records []*models.PassRecord) models.StudentSummary {
	summary := models.StudentSummary{TotalPasses: len(records)}
	for _, r := range records {
		switch r.Status {
		case models.StatusApproved:
			summary.ApprovedPasses++
		case models.StatusPending:
			summary.PendingPasses++
		case models.StatusRejected:
			summary.RejectedPasses++
		}
		if r.Status == models.StatusApproved && r.ExitStatus == models.ExitOut {
			summary.CurrentlyOut = true
		}
	}
	return summary
}
