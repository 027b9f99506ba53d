package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/timeutil"
)

// GatePassService is the workflow engine: it owns the pass lifecycle
// state machine and every cross-record invariant. Callers resolve the
// acting user first (permission checks stay at the HTTP layer) and the
// service reads and writes the ledger.
//
// Mutations never retry: when a conditional update loses a race the
// conflict is returned to the caller as-is.
type GatePassService struct {
	PassStore repositories.GatePassStore
	UserStore repositories.UserStore
	Clock     timeutil.Clock
}

func NewGatePassService(passStore repositories.GatePassStore, userStore repositories.UserStore, clock timeutil.Clock) *GatePassService {
	return &GatePassService{
		PassStore: passStore,
		UserStore: userStore,
		Clock:     clock,
	}
}

// RequestPass creates a new pending gate pass for the student. The
// checks run in a fixed order so the reported error is deterministic:
// required fields, parse validity, out date not past, return after out,
// no pending request, not currently out.
func (s *GatePassService) RequestPass(ctx context.Context, student *models.User, req *models.CreateGatePassRequest) (*models.PassRecord, error) {
	for _, field := range []struct{ name, value string }{
		{"reason", req.Reason},
		{"going_place", req.GoingPlace},
		{"from_date", req.FromDate},
		{"out_time", req.OutTime},
		{"return_date", req.ReturnDate},
		{"return_time", req.ReturnTime},
	} {
		if strings.TrimSpace(field.value) == "" {
			return nil, apperrors.Newf(apperrors.KindValidation, "%s is required", field.name)
		}
	}

	fromDate, err := timeutil.ParseDate(req.FromDate)
	if err != nil {
		return nil, apperrors.Validation("invalid date or time format")
	}
	outTime, err := timeutil.ParseTimeOfDay(req.OutTime)
	if err != nil {
		return nil, apperrors.Validation("invalid date or time format")
	}
	returnDate, err := timeutil.ParseDate(req.ReturnDate)
	if err != nil {
		return nil, apperrors.Validation("invalid date or time format")
	}
	returnTime, err := timeutil.ParseTimeOfDay(req.ReturnTime)
	if err != nil {
		return nil, apperrors.Validation("invalid date or time format")
	}

	now := s.Clock.Now()
	if fromDate.Before(timeutil.StartOfDay(now)) {
		return nil, apperrors.Guard("gate pass date cannot be in the past")
	}

	start := timeutil.Combine(fromDate, outTime)
	end := timeutil.Combine(returnDate, returnTime)
	if !end.After(start) {
		return nil, apperrors.Guard("return date/time must be after out date/time")
	}

	hasPending, err := s.PassStore.HasPending(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, apperrors.Guard("you already have a pending gate pass request")
	}

	out, err := s.PassStore.IsCurrentlyOut(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	if out {
		return nil, apperrors.Guard("you are currently out - return before creating a new gate pass")
	}

	pass := &models.GatePass{
		PassID:     uuid.NewString(),
		StudentID:  student.ID,
		Reason:     strings.TrimSpace(req.Reason),
		GoingPlace: strings.TrimSpace(req.GoingPlace),
		FromDate:   fromDate,
		OutTime:    outTime,
		ReturnDate: returnDate,
		ReturnTime: returnTime,
		Status:     models.StatusPending,
		ExitStatus: models.ExitIn,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// The store re-checks pending/out exclusivity atomically with the
	// insert; two concurrent requests cannot both pass the guards above.
	if err := s.PassStore.Create(ctx, pass); err != nil {
		return nil, err
	}
	return pass.Record(student, nil, now), nil
}

// Approve records the warden's positive decision on a pending pass.
func (s *GatePassService) Approve(ctx context.Context, warden *models.User, passID string, remarks *string) (*models.PassRecord, error) {
	return s.decide(ctx, warden, passID, remarks, (*models.GatePass).Approve)
}

// Reject records the warden's negative decision on a pending pass. A
// rejected pass is terminal: it can never be exited or re-approved.
func (s *GatePassService) Reject(ctx context.Context, warden *models.User, passID string, remarks *string) (*models.PassRecord, error) {
	return s.decide(ctx, warden, passID, remarks, (*models.GatePass).Reject)
}

func (s *GatePassService) decide(
	ctx context.Context,
	warden *models.User,
	passID string,
	remarks *string,
	apply func(*models.GatePass, string, *string, time.Time) error,
) (*models.PassRecord, error) {
	pass, err := s.PassStore.FindByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	fromStatus, fromExit := pass.Status, pass.ExitStatus

	now := s.Clock.Now()
	if err := apply(pass, warden.ID, remarks, now); err != nil {
		return nil, err
	}
	if err := s.PassStore.Update(ctx, pass, fromStatus, fromExit); err != nil {
		return nil, err
	}
	return s.record(ctx, pass, now), nil
}

// MarkExit records the student physically leaving through the gate.
func (s *GatePassService) MarkExit(ctx context.Context, passID string, remarks *string) (*models.PassRecord, error) {
	pass, err := s.PassStore.FindByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	fromStatus, fromExit := pass.Status, pass.ExitStatus

	now := s.Clock.Now()
	if err := pass.MarkExit(remarks, now); err != nil {
		return nil, err
	}
	if err := s.PassStore.Update(ctx, pass, fromStatus, fromExit); err != nil {
		return nil, err
	}
	return s.record(ctx, pass, now), nil
}

// MarkReturn records the student coming back through the gate.
func (s *GatePassService) MarkReturn(ctx context.Context, passID string, remarks *string) (*models.PassRecord, error) {
	pass, err := s.PassStore.FindByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	fromStatus, fromExit := pass.Status, pass.ExitStatus

	now := s.Clock.Now()
	if err := pass.MarkReturn(remarks, now); err != nil {
		return nil, err
	}
	if err := s.PassStore.Update(ctx, pass, fromStatus, fromExit); err != nil {
		return nil, err
	}
	return s.record(ctx, pass, now), nil
}

// PassDetails returns the flat record for one pass, with the student's
// name, room and guardian contacts resolved for rendering collaborators.
func (s *GatePassService) PassDetails(ctx context.Context, passID string) (*models.PassRecord, error) {
	pass, err := s.PassStore.FindByID(ctx, passID)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, pass, s.Clock.Now()), nil
}

// StudentPasses lists a student's passes, newest first.
func (s *GatePassService) StudentPasses(ctx context.Context, studentID string) ([]*models.PassRecord, error) {
	passes, err := s.PassStore.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.records(ctx, passes), nil
}

// PendingRequests lists all pending passes, newest first.
func (s *GatePassService) PendingRequests(ctx context.Context) ([]*models.PassRecord, error) {
	passes, err := s.PassStore.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return s.records(ctx, passes), nil
}

// ApprovedPasses lists approved passes by requested out date, newest first.
func (s *GatePassService) ApprovedPasses(ctx context.Context) ([]*models.PassRecord, error) {
	passes, err := s.PassStore.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	return s.records(ctx, passes), nil
}

// CurrentlyOut lists students who are out right now, latest exit first.
func (s *GatePassService) CurrentlyOut(ctx context.Context) ([]*models.PassRecord, error) {
	passes, err := s.PassStore.ListCurrentlyOut(ctx)
	if err != nil {
		return nil, err
	}
	return s.records(ctx, passes), nil
}

// AllPasses lists the full ledger with optional status, student and
// date-range filters.
func (s *GatePassService) AllPasses(ctx context.Context, filter models.GatePassFilter) ([]*models.PassRecord, error) {
	passes, err := s.PassStore.ListFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.records(ctx, passes), nil
}

func (s *GatePassService) record(ctx context.Context, pass *models.GatePass, now time.Time) *models.PassRecord {
	student, _ := s.UserStore.FindByID(ctx, pass.StudentID)
	var approver *models.User
	if pass.ApprovedByID != nil {
		approver, _ = s.UserStore.FindByID(ctx, *pass.ApprovedByID)
	}
	return pass.Record(student, approver, now)
}

func (s *GatePassService) records(ctx context.Context, passes []*models.GatePass) []*models.PassRecord {
	now := s.Clock.Now()
	records := make([]*models.PassRecord, 0, len(passes))
	for _, pass := range passes {
		records = append(records, s.record(ctx, pass, now))
	}
	return records
}
