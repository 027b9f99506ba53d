package models

// Aggregate read models for the dashboard endpoints. Every number is
// derived from the ledger at request time; nothing is cached or stored.

// StudentYearCounts breaks the active student population down by
// academic year.
type StudentYearCounts struct {
	Total      int `json:"total"`
	FirstYear  int `json:"first_year"`
	SecondYear int `json:"second_year"`
	ThirdYear  int `json:"third_year"`
	FourthYear int `json:"fourth_year"`
}

// PassCounts summarizes the ledger by lifecycle state.
type PassCounts struct {
	Pending      int `json:"pending"`
	Approved     int `json:"approved"`
	CurrentlyOut int `json:"currently_out"`
}

// WardenDashboard is the hostel-wide overview served to wardens.
type WardenDashboard struct {
	Students       StudentYearCounts `json:"student_stats"`
	Passes         PassCounts        `json:"gate_pass_stats"`
	RecentRequests []*PassRecord     `json:"recent_requests"`
}

// RoomAvailability reports which rooms still have space, with the
// current occupant count per occupied room.
type RoomAvailability struct {
	AvailableRooms []string       `json:"available_rooms"`
	Occupancy      map[string]int `json:"occupancy"`
	TotalRooms     int            `json:"total_rooms"`
	AvailableCount int            `json:"available_count"`
}

// StudentSummary is the student's own view of their pass history.
type StudentSummary struct {
	TotalPasses    int  `json:"total_passes"`
	ApprovedPasses int  `json:"approved_passes"`
	PendingPasses  int  `json:"pending_passes"`
	RejectedPasses int  `json:"rejected_passes"`
	CurrentlyOut   bool `json:"currently_out"`
}

// WardenSummary is the warden's at-a-glance queue view.
type WardenSummary struct {
	PendingRequests int `json:"pending_requests"`
	TodayApproved   int `json:"today_approved"`
	CurrentlyOut    int `json:"currently_out"`
}

// SecuritySummary is the gate desk's view for the current day.
type SecuritySummary struct {
	TodayPasses  int `json:"today_passes"`
	CurrentlyOut int `json:"currently_out"`
}

// Dashboard is the per-user landing view. Exactly one of the summary
// pointers is set, matching the user's role, the same variant shape
// the User profiles use.
type Dashboard struct {
	User         *User            `json:"user"`
	UserType     Role             `json:"user_type"`
	Student      *StudentSummary  `json:"student_stats,omitempty"`
	Warden       *WardenSummary   `json:"warden_stats,omitempty"`
	Security     *SecuritySummary `json:"security_stats,omitempty"`
	RecentPasses []*PassRecord    `json:"recent_passes,omitempty"`
}

// StudentStats extends the student summary with the current calendar
// month and the overall approval rate as a percentage.
type StudentStats struct {
	StudentSummary
	MonthlyPasses int     `json:"monthly_passes"`
	ApprovalRate  float64 `json:"approval_rate"`
}

// WardenStats is the warden's monthly reporting view.
type WardenStats struct {
	PendingRequests int `json:"pending_requests"`
	TodayPasses     int `json:"today_passes"`
	MonthlyPasses   int `json:"monthly_passes"`
	TotalStudents   int `json:"total_students"`
	CurrentlyOut    int `json:"currently_out"`
}

// SecurityStats is the gate desk's daily movement summary.
type SecurityStats struct {
	TodayPasses  int `json:"today_passes"`
	CurrentlyOut int `json:"currently_out"`
	TodayExits   int `json:"today_exits"`
	TodayReturns int `json:"today_returns"`
}

// Stats is the role-keyed statistics response; exactly one of the
// pointers is set.
type Stats struct {
	UserType Role           `json:"user_type"`
	Student  *StudentStats  `json:"student,omitempty"`
	Warden   *WardenStats   `json:"warden,omitempty"`
	Security *SecurityStats `json:"security,omitempty"`
}
