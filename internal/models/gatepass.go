package models

import (
	"fmt"
	"time"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/timeutil"
)

// Status is the supervisor decision axis of a gate pass. Pending is the
// only status a transition is allowed from; Approved and Rejected are
// terminal on this axis.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ExitStatus is the physical presence axis, meaningful only once a pass
// is approved.
type ExitStatus string

const (
	ExitIn  ExitStatus = "In"
	ExitOut ExitStatus = "Out"
)

// GatePass is one request-to-decision-to-exit-return record for one
// student.
//
// Invariants held at every observable state:
//   - Pending implies exit In and no approver fields.
//   - Rejected implies exit In.
//   - exit Out implies Approved and an actual exit timestamp.
//   - an actual return timestamp implies exit In and a preceding exit
//     timestamp.
type GatePass struct {
	PassID    string `json:"pass_id"`
	StudentID string `json:"student_id"`

	Reason     string    `json:"reason"`
	GoingPlace string    `json:"going_place"`
	FromDate   time.Time `json:"-"`
	OutTime    time.Time `json:"-"`
	ReturnDate time.Time `json:"-"`
	ReturnTime time.Time `json:"-"`

	Status       Status     `json:"status"`
	ApprovedByID *string    `json:"approved_by_id"`
	ApprovedAt   *time.Time `json:"approved_at"`
	Remarks      *string    `json:"remarks"`

	ExitStatus       ExitStatus `json:"exit_status"`
	ActualOutTime    *time.Time `json:"actual_out_time"`
	ActualReturnTime *time.Time `json:"actual_return_time"`
	ActualReturnDate *time.Time `json:"actual_return_date"`
	SecurityRemarks  *string    `json:"security_remarks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State renders the composite approval+exit state for error messages.
func (g *GatePass) State() string {
	if g.Status == StatusApproved {
		return fmt.Sprintf("%s/%s", g.Status, g.ExitStatus)
	}
	return string(g.Status)
}

// ExpectedReturn combines the requested return date and time into one
// instant. Comparing only the time of day, or combining against the out
// date, misclassifies multi-day passes; the return date is used
// explicitly.
func (g *GatePass) ExpectedReturn() time.Time {
	return timeutil.Combine(g.ReturnDate, g.ReturnTime)
}

// ExpectedOut combines the requested out date and time.
func (g *GatePass) ExpectedOut() time.Time {
	return timeutil.Combine(g.FromDate, g.OutTime)
}

// Clone returns a copy with its own pointer fields, so a caller
// holding the clone cannot reach back into the original record.
func (g *GatePass) Clone() *GatePass {
	copied := *g
	copied.ApprovedByID = clonePtr(g.ApprovedByID)
	copied.ApprovedAt = clonePtr(g.ApprovedAt)
	copied.Remarks = clonePtr(g.Remarks)
	copied.ActualOutTime = clonePtr(g.ActualOutTime)
	copied.ActualReturnTime = clonePtr(g.ActualReturnTime)
	copied.ActualReturnDate = clonePtr(g.ActualReturnDate)
	copied.SecurityRemarks = clonePtr(g.SecurityRemarks)
	return &copied
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Approve records the warden's decision. Legal only while Pending.
func (g *GatePass) Approve(wardenID string, remarks *string, now time.Time) error {
	if g.Status != StatusPending {
		return apperrors.InvalidTransition("approve", g.State())
	}
	g.Status = StatusApproved
	g.ApprovedByID = &wardenID
	g.ApprovedAt = &now
	g.Remarks = remarks
	g.UpdatedAt = now
	return nil
}

// Reject records the warden's decision. Legal only while Pending.
func (g *GatePass) Reject(wardenID string, remarks *string, now time.Time) error {
	if g.Status != StatusPending {
		return apperrors.InvalidTransition("reject", g.State())
	}
	g.Status = StatusRejected
	g.ApprovedByID = &wardenID
	g.ApprovedAt = &now
	g.Remarks = remarks
	g.UpdatedAt = now
	return nil
}

// MarkExit records the student leaving through the gate. Legal only for
// an approved pass whose student is still in.
func (g *GatePass) MarkExit(remarks *string, now time.Time) error {
	if g.Status != StatusApproved {
		return apperrors.InvalidTransition("mark exit for", g.State())
	}
	if g.ExitStatus == ExitOut {
		return apperrors.InvalidTransition("mark exit for", g.State())
	}
	g.ExitStatus = ExitOut
	g.ActualOutTime = &now
	g.SecurityRemarks = remarks
	g.UpdatedAt = now
	return nil
}

// MarkReturn records the student coming back. Legal only while Out.
// Return remarks are appended to the exit remarks, not overwritten.
func (g *GatePass) MarkReturn(remarks *string, now time.Time) error {
	if g.ExitStatus != ExitOut {
		return apperrors.InvalidTransition("mark return for", g.State())
	}
	g.ExitStatus = ExitIn
	g.ActualReturnTime = &now
	returnDate := timeutil.StartOfDay(now)
	g.ActualReturnDate = &returnDate
	if remarks != nil && *remarks != "" {
		prior := ""
		if g.SecurityRemarks != nil {
			prior = *g.SecurityRemarks
		}
		combined := prior + " | Return: " + *remarks
		g.SecurityRemarks = &combined
	}
	g.UpdatedAt = now
	return nil
}

// IsOverdue reports whether the student is out past the requested
// return instant.
func (g *GatePass) IsOverdue(now time.Time) bool {
	if g.ExitStatus != ExitOut {
		return false
	}
	return now.After(g.ExpectedReturn())
}

// Duration expresses how long a student has been out.
type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

// DurationOut computes time elapsed since the actual exit. Defined only
// while the student is out; nil otherwise.
func (g *GatePass) DurationOut(now time.Time) *Duration {
	if g.ExitStatus != ExitOut || g.ActualOutTime == nil {
		return nil
	}
	elapsed := now.Sub(*g.ActualOutTime)
	total := int(elapsed.Minutes())
	return &Duration{
		Hours:        total / 60,
		Minutes:      total % 60,
		TotalMinutes: total,
	}
}

// CreateGatePassRequest is the student-facing creation payload. Dates
// are ISO calendar dates, times 24-hour HH:MM.
type CreateGatePassRequest struct {
	Reason     string `json:"reason"`
	GoingPlace string `json:"going_place"`
	FromDate   string `json:"from_date"`
	OutTime    string `json:"out_time"`
	ReturnDate string `json:"return_date"`
	ReturnTime string `json:"return_time"`
}

// RemarksRequest carries the optional free-text remark attached to a
// decision or a gate event.
type RemarksRequest struct {
	Remarks *string `json:"remarks"`
}

// GatePassFilter narrows the warden's full-ledger listing.
type GatePassFilter struct {
	Status    Status
	StudentID string
	FromDate  *time.Time // Inclusive lower bound on the requested out date
	ToDate    *time.Time // Inclusive upper bound on the requested out date
}

// PassRecord is the flat view served over the API: every pass field
// plus the resolved student identity, with dates and times already in
// wire format.
type PassRecord struct {
	PassID           string     `json:"pass_id"`
	StudentID        string     `json:"student_id"`
	StudentName      string     `json:"student_name"`
	RoomNo           string     `json:"room_no"`
	Phone            string     `json:"phone"`
	GuardianName     string     `json:"guardian_name"`
	GuardianPhone    string     `json:"guardian_phone"`
	Reason           string     `json:"reason"`
	GoingPlace       string     `json:"going_place"`
	FromDate         string     `json:"from_date"`
	OutTime          string     `json:"out_time"`
	ReturnDate       string     `json:"return_date"`
	ReturnTime       string     `json:"return_time"`
	Status           Status     `json:"status"`
	ApprovedBy       *string    `json:"approved_by"`
	ApprovedAt       *time.Time `json:"approved_at"`
	Remarks          *string    `json:"remarks"`
	ExitStatus       ExitStatus `json:"exit_status"`
	ActualOutTime    *time.Time `json:"actual_out_time"`
	ActualReturnTime *time.Time `json:"actual_return_time"`
	ActualReturnDate *string    `json:"actual_return_date"`
	SecurityRemarks  *string    `json:"security_remarks"`
	Overdue          bool       `json:"overdue"`
	DurationOut      *Duration  `json:"duration_out,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Record flattens the pass for the HTTP layer. student and approver
// may be nil when the directory no longer resolves them.
func (g *GatePass) Record(student, approver *User, now time.Time) *PassRecord {
	rec := &PassRecord{
		PassID:           g.PassID,
		StudentID:        g.StudentID,
		StudentName:      "Unknown",
		RoomNo:           "Unknown",
		Reason:           g.Reason,
		GoingPlace:       g.GoingPlace,
		FromDate:         g.FromDate.Format(timeutil.DateLayout),
		OutTime:          g.OutTime.Format(timeutil.TimeLayout),
		ReturnDate:       g.ReturnDate.Format(timeutil.DateLayout),
		ReturnTime:       g.ReturnTime.Format(timeutil.TimeLayout),
		Status:           g.Status,
		ApprovedAt:       g.ApprovedAt,
		Remarks:          g.Remarks,
		ExitStatus:       g.ExitStatus,
		ActualOutTime:    g.ActualOutTime,
		ActualReturnTime: g.ActualReturnTime,
		SecurityRemarks:  g.SecurityRemarks,
		Overdue:          g.IsOverdue(now),
		DurationOut:      g.DurationOut(now),
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
	}
	if student != nil {
		rec.StudentName = student.Name
		rec.Phone = student.Phone
		if student.Student != nil {
			rec.RoomNo = student.Student.Room
			rec.GuardianName = student.Student.GuardianName
			rec.GuardianPhone = student.Student.GuardianPhone
		}
	}
	if approver != nil {
		rec.ApprovedBy = &approver.Name
	}
	if g.ActualReturnDate != nil {
		d := g.ActualReturnDate.Format(timeutil.DateLayout)
		rec.ActualReturnDate = &d
	}
	return rec
}
