package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
	"hostel-backend/internal/timeutil"
)

// GatePassRepository is the PostgreSQL pass ledger. The one-pending and
// one-out per student rules are enforced by partial unique indexes
// (see migrations/001_init.sql), so concurrent inserts cannot slip past
// the service-level guard checks.
type GatePassRepository struct {
	DB *pgxpool.Pool
}

func NewGatePassRepository(db *pgxpool.Pool) *GatePassRepository {
	return &GatePassRepository{DB: db}
}

const gatePassColumns = `
	pass_id, student_id, reason, going_place,
	from_date, out_time, return_date, return_time,
	status, approved_by_id, approved_at, remarks,
	exit_status, actual_out_time, actual_return_time, actual_return_date,
	security_remarks, created_at, updated_at
`

func (r *GatePassRepository) Create(ctx context.Context, pass *models.GatePass) error {
	query := `
		INSERT INTO gate_passes (` + gatePassColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.DB.Exec(ctx, query,
		pass.PassID, pass.StudentID, pass.Reason, pass.GoingPlace,
		pass.FromDate, pass.OutTime.Format(timeutil.TimeLayout),
		pass.ReturnDate, pass.ReturnTime.Format(timeutil.TimeLayout),
		pass.Status, pass.ApprovedByID, pass.ApprovedAt, pass.Remarks,
		pass.ExitStatus, pass.ActualOutTime, pass.ActualReturnTime, pass.ActualReturnDate,
		pass.SecurityRemarks, pass.CreatedAt, pass.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.Conflict("student already has an active gate pass")
	}
	return err
}

func (r *GatePassRepository) FindByID(ctx context.Context, passID string) (*models.GatePass, error) {
	query := `SELECT ` + gatePassColumns + ` FROM gate_passes WHERE pass_id = $1`
	pass, err := scanGatePass(r.DB.QueryRow(ctx, query, passID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("gate pass")
	}
	return pass, err
}

func (r *GatePassRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.GatePass, error) {
	query := `SELECT ` + gatePassColumns + ` FROM gate_passes WHERE student_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, studentID)
}

func (r *GatePassRepository) ListPending(ctx context.Context) ([]*models.GatePass, error) {
	query := `SELECT ` + gatePassColumns + ` FROM gate_passes WHERE status = 'Pending' ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *GatePassRepository) ListApproved(ctx context.Context) ([]*models.GatePass, error) {
	query := `SELECT ` + gatePassColumns + ` FROM gate_passes WHERE status = 'Approved' ORDER BY from_date DESC, created_at DESC`
	return r.list(ctx, query)
}

func (r *GatePassRepository) ListCurrentlyOut(ctx context.Context) ([]*models.GatePass, error) {
	query := `
		SELECT ` + gatePassColumns + ` FROM gate_passes
		WHERE status = 'Approved' AND exit_status = 'Out'
		ORDER BY actual_out_time DESC
	`
	return r.list(ctx, query)
}

func (r *GatePassRepository) ListFiltered(ctx context.Context, filter models.GatePassFilter) ([]*models.GatePass, error) {
	query := `SELECT ` + gatePassColumns + ` FROM gate_passes WHERE 1=1`
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.StudentID != "" {
		args = append(args, models.NormalizeUserID(filter.StudentID))
		query += ` AND student_id = $` + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += ` AND from_date >= $` + strconv.Itoa(len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += ` AND from_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	return r.list(ctx, query, args...)
}

func (r *GatePassRepository) CountPending(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM gate_passes WHERE status = 'Pending'`)
}

func (r *GatePassRepository) CountApprovedForDate(ctx context.Context, date time.Time) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM gate_passes WHERE status = 'Approved' AND from_date = $1`,
		timeutil.StartOfDay(date),
	)
}

func (r *GatePassRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM gate_passes WHERE student_id = $1`, studentID)
}

func (r *GatePassRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM gate_passes WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	)
}

func (r *GatePassRepository) HasPending(ctx context.Context, studentID string) (bool, error) {
	n, err := r.count(ctx,
		`SELECT COUNT(*) FROM gate_passes WHERE student_id = $1 AND status = 'Pending'`,
		studentID,
	)
	return n > 0, err
}

func (r *GatePassRepository) IsCurrentlyOut(ctx context.Context, studentID string) (bool, error) {
	n, err := r.count(ctx,
		`SELECT COUNT(*) FROM gate_passes WHERE student_id = $1 AND status = 'Approved' AND exit_status = 'Out'`,
		studentID,
	)
	return n > 0, err
}

// Update replaces the record, conditioned on the status pair the caller
// read. Zero rows affected with an existing pass means a concurrent
// writer got there first.
func (r *GatePassRepository) Update(ctx context.Context, pass *models.GatePass, fromStatus models.Status, fromExit models.ExitStatus) error {
	query := `
		UPDATE gate_passes SET
			status = $2, approved_by_id = $3, approved_at = $4, remarks = $5,
			exit_status = $6, actual_out_time = $7, actual_return_time = $8,
			actual_return_date = $9, security_remarks = $10, updated_at = $11
		WHERE pass_id = $1 AND status = $12 AND exit_status = $13
	`
	tag, err := r.DB.Exec(ctx, query,
		pass.PassID,
		pass.Status, pass.ApprovedByID, pass.ApprovedAt, pass.Remarks,
		pass.ExitStatus, pass.ActualOutTime, pass.ActualReturnTime,
		pass.ActualReturnDate, pass.SecurityRemarks, pass.UpdatedAt,
		fromStatus, fromExit,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, pass.PassID); err != nil {
			return err
		}
		return apperrors.Conflict("gate pass was modified concurrently")
	}
	return nil
}

func (r *GatePassRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.GatePass, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passes []*models.GatePass
	for rows.Next() {
		pass, err := scanGatePass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, pass)
	}
	return passes, rows.Err()
}

func (r *GatePassRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

// scanGatePass reads one ledger row. Times of day are stored as HH:MM
// text and parsed back into the hostel timezone.
func scanGatePass(row pgx.Row) (*models.GatePass, error) {
	var pass models.GatePass
	var outTime, returnTime string
	err := row.Scan(
		&pass.PassID, &pass.StudentID, &pass.Reason, &pass.GoingPlace,
		&pass.FromDate, &outTime, &pass.ReturnDate, &returnTime,
		&pass.Status, &pass.ApprovedByID, &pass.ApprovedAt, &pass.Remarks,
		&pass.ExitStatus, &pass.ActualOutTime, &pass.ActualReturnTime, &pass.ActualReturnDate,
		&pass.SecurityRemarks, &pass.CreatedAt, &pass.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if pass.OutTime, err = timeutil.ParseTimeOfDay(outTime); err != nil {
		return nil, fmt.Errorf("invalid out_time %q: %w", outTime, err)
	}
	if pass.ReturnTime, err = timeutil.ParseTimeOfDay(returnTime); err != nil {
		return nil, fmt.Errorf("invalid return_time %q: %w", returnTime, err)
	}
	return &pass, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
