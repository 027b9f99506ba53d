package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/timeutil"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tod, err := timeutil.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func newTestPass(t *testing.T) *GatePass {
	t.Helper()
	return &GatePass{
		PassID:     "pass-1",
		StudentID:  "STU001",
		Reason:     "family visit",
		GoingPlace: "home",
		FromDate:   mustDate(t, "2026-03-10"),
		OutTime:    mustTime(t, "09:00"),
		ReturnDate: mustDate(t, "2026-03-10"),
		ReturnTime: mustTime(t, "18:00"),
		Status:     StatusPending,
		ExitStatus: ExitIn,
	}
}

func TestGatePassLifecycle(t *testing.T) {
	pass := newTestPass(t)
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, timeutil.Location)

	require.NoError(t, pass.Approve("WRD001", nil, now))
	assert.Equal(t, StatusApproved, pass.Status)
	require.NotNil(t, pass.ApprovedByID)
	assert.Equal(t, "WRD001", *pass.ApprovedByID)
	require.NotNil(t, pass.ApprovedAt)

	exitAt := now.Add(time.Hour)
	require.NoError(t, pass.MarkExit(nil, exitAt))
	assert.Equal(t, ExitOut, pass.ExitStatus)
	require.NotNil(t, pass.ActualOutTime)
	assert.True(t, pass.ActualOutTime.Equal(exitAt))

	returnAt := exitAt.Add(4 * time.Hour)
	require.NoError(t, pass.MarkReturn(nil, returnAt))
	assert.Equal(t, ExitIn, pass.ExitStatus)
	require.NotNil(t, pass.ActualReturnTime)
	require.NotNil(t, pass.ActualReturnDate)
	assert.True(t, pass.ActualReturnDate.Equal(timeutil.StartOfDay(returnAt)))
}

func TestGatePassApproveOnlyWhilePending(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, timeutil.Location)

	pass := newTestPass(t)
	require.NoError(t, pass.Approve("WRD001", nil, now))
	err := pass.Approve("WRD001", nil, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))

	rejected := newTestPass(t)
	require.NoError(t, rejected.Reject("WRD001", nil, now))
	assert.True(t, apperrors.IsKind(rejected.Approve("WRD001", nil, now), apperrors.KindInvalidTransition))
	assert.True(t, apperrors.IsKind(rejected.MarkExit(nil, now), apperrors.KindInvalidTransition))
}

func TestGatePassExitRequiresApproval(t *testing.T) {
	pass := newTestPass(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, timeutil.Location)

	err := pass.MarkExit(nil, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))

	err = pass.MarkReturn(nil, now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestGatePassDoubleExit(t *testing.T) {
	pass := newTestPass(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, timeutil.Location)

	require.NoError(t, pass.Approve("WRD001", nil, now))
	require.NoError(t, pass.MarkExit(nil, now))

	err := pass.MarkExit(nil, now.Add(time.Minute))
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestGatePassReturnRemarksAppend(t *testing.T) {
	pass := newTestPass(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, timeutil.Location)

	exitRemark := "bag checked"
	returnRemark := "all clear"
	require.NoError(t, pass.Approve("WRD001", nil, now))
	require.NoError(t, pass.MarkExit(&exitRemark, now))
	require.NoError(t, pass.MarkReturn(&returnRemark, now.Add(2*time.Hour)))

	require.NotNil(t, pass.SecurityRemarks)
	assert.Equal(t, "bag checked | Return: all clear", *pass.SecurityRemarks)
}

func TestGatePassOverdueUsesReturnDate(t *testing.T) {
	pass := newTestPass(t)
	// Three-day pass: out on the 10th, due back on the 13th
	pass.ReturnDate = mustDate(t, "2026-03-13")

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, timeutil.Location)
	require.NoError(t, pass.Approve("WRD001", nil, now))
	require.NoError(t, pass.MarkExit(nil, now))

	// Day two, well past 18:00 on the clock but before the return date
	dayTwo := time.Date(2026, 3, 11, 20, 0, 0, 0, timeutil.Location)
	assert.False(t, pass.IsOverdue(dayTwo))

	dueBack := time.Date(2026, 3, 13, 18, 0, 0, 0, timeutil.Location)
	assert.False(t, pass.IsOverdue(dueBack))
	assert.True(t, pass.IsOverdue(dueBack.Add(time.Minute)))
}

func TestGatePassNotOverdueWhileIn(t *testing.T) {
	pass := newTestPass(t)
	late := time.Date(2026, 3, 20, 9, 0, 0, 0, timeutil.Location)
	assert.False(t, pass.IsOverdue(late))
}

func TestGatePassDurationOut(t *testing.T) {
	pass := newTestPass(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, timeutil.Location)

	assert.Nil(t, pass.DurationOut(now))

	require.NoError(t, pass.Approve("WRD001", nil, now))
	require.NoError(t, pass.MarkExit(nil, now))

	d := pass.DurationOut(now.Add(2*time.Hour + 35*time.Minute))
	require.NotNil(t, d)
	assert.Equal(t, 2, d.Hours)
	assert.Equal(t, 35, d.Minutes)
	assert.Equal(t, 155, d.TotalMinutes)
}

func TestGatePassRecordResolvesStudent(t *testing.T) {
	pass := newTestPass(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, timeutil.Location)

	rec := pass.Record(nil, nil, now)
	assert.Equal(t, "Unknown", rec.StudentName)
	assert.Equal(t, "Unknown", rec.RoomNo)
	assert.Equal(t, "2026-03-10", rec.FromDate)
	assert.Equal(t, "09:00", rec.OutTime)

	student := &User{
		ID:   "STU001",
		Name: "Asha Verma",
		Role: RoleStudent,
		Student: &StudentProfile{
			Room:          "A-101",
			GuardianName:  "R Verma",
			GuardianPhone: "9876500000",
		},
	}
	rec = pass.Record(student, nil, now)
	assert.Equal(t, "Asha Verma", rec.StudentName)
	assert.Equal(t, "A-101", rec.RoomNo)
	assert.Equal(t, "R Verma", rec.GuardianName)
}
