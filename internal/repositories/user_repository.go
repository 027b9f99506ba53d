package repositories

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"
)

// UserRepository is the PostgreSQL identity directory. Users live in
// one table with a role discriminator; the role-specific columns are
// folded into the matching profile struct on scan.
type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `
	id, name, password_hash, user_type, email, phone, is_active,
	room, course, year, guardian_name, guardian_phone,
	department, qualification, experience, shift, emergency_contact,
	created_at, updated_at
`

// CreateStudent inserts a student inside a transaction that holds a
// per-room advisory lock across the occupancy count and the insert, so
// two concurrent inserts cannot both claim the last slot in a room.
func (r *UserRepository) CreateStudent(ctx context.Context, user *models.User) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	room := user.Student.Room
	if room != "" {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('room:' || $1))`, room); err != nil {
			return err
		}
		var occupancy int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM users WHERE user_type = 'student' AND room = $1`,
			room,
		).Scan(&occupancy)
		if err != nil {
			return err
		}
		if occupancy >= models.MaxRoomOccupancy {
			return apperrors.Guard("room is already fully occupied")
		}
	}

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertUser(ctx context.Context, tx pgx.Tx, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	args := userArgs(user)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("user ID or email already exists")
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.DB.QueryRow(ctx, query, models.NormalizeUserID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("user")
	}
	return user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	user, err := scanUser(r.DB.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("user")
	}
	return user, err
}

func (r *UserRepository) ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_type = 'student'`
	args := []interface{}{}
	if filter.Year != "" {
		args = append(args, filter.Year)
		query += ` AND year = $` + strconv.Itoa(len(args))
	}
	if filter.Course != "" {
		args = append(args, "%"+filter.Course+"%")
		query += ` AND course ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (name ILIKE $` + n + ` OR id ILIKE $` + n + ` OR room ILIKE $` + n + `)`
	}
	query += ` ORDER BY id`
	return r.list(ctx, query, args...)
}

func (r *UserRepository) Search(ctx context.Context, search string, role models.Role, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE user_type = $1 AND (name ILIKE $2 OR id ILIKE $2)
		ORDER BY id LIMIT $3
	`
	return r.list(ctx, query, role, "%"+search+"%", limit)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			name = $2, password_hash = $3, email = $4, phone = $5, is_active = $6,
			room = $7, course = $8, year = $9, guardian_name = $10, guardian_phone = $11,
			department = $12, qualification = $13, experience = $14,
			shift = $15, emergency_contact = $16, updated_at = $17
		WHERE id = $1
	`
	tag, err := r.DB.Exec(ctx, query,
		user.ID, user.Name, user.PasswordHash, nullable(user.Email), user.Phone, user.IsActive,
		studentField(user, func(p *models.StudentProfile) string { return p.Room }),
		studentField(user, func(p *models.StudentProfile) string { return p.Course }),
		studentField(user, func(p *models.StudentProfile) string { return p.Year }),
		studentField(user, func(p *models.StudentProfile) string { return p.GuardianName }),
		studentField(user, func(p *models.StudentProfile) string { return p.GuardianPhone }),
		wardenField(user, func(p *models.WardenProfile) string { return p.Department }),
		wardenField(user, func(p *models.WardenProfile) string { return p.Qualification }),
		experienceField(user),
		securityField(user, func(p *models.SecurityProfile) string { return p.Shift }),
		securityField(user, func(p *models.SecurityProfile) string { return p.EmergencyContact }),
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.Conflict("email already exists")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, models.NormalizeUserID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

func (r *UserRepository) CountInRoom(ctx context.Context, room string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE user_type = 'student' AND room = $1`,
		room,
	).Scan(&n)
	return n, err
}

func (r *UserRepository) RoomOccupancy(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT room, COUNT(*) FROM users
		 WHERE user_type = 'student' AND is_active AND room IS NOT NULL
		 GROUP BY room`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupancy := make(map[string]int)
	for rows.Next() {
		var room string
		var n int
		if err := rows.Scan(&room, &n); err != nil {
			return nil, err
		}
		occupancy[room] = n
	}
	return occupancy, rows.Err()
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func userArgs(user *models.User) []interface{} {
	return []interface{}{
		user.ID, user.Name, user.PasswordHash, user.Role, nullable(user.Email), user.Phone, user.IsActive,
		studentField(user, func(p *models.StudentProfile) string { return p.Room }),
		studentField(user, func(p *models.StudentProfile) string { return p.Course }),
		studentField(user, func(p *models.StudentProfile) string { return p.Year }),
		studentField(user, func(p *models.StudentProfile) string { return p.GuardianName }),
		studentField(user, func(p *models.StudentProfile) string { return p.GuardianPhone }),
		wardenField(user, func(p *models.WardenProfile) string { return p.Department }),
		wardenField(user, func(p *models.WardenProfile) string { return p.Qualification }),
		experienceField(user),
		securityField(user, func(p *models.SecurityProfile) string { return p.Shift }),
		securityField(user, func(p *models.SecurityProfile) string { return p.EmergencyContact }),
		user.CreatedAt, user.UpdatedAt,
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var email *string
	var room, course, year, guardianName, guardianPhone *string
	var department, qualification, experience, shift, emergencyContact *string
	err := row.Scan(
		&user.ID, &user.Name, &user.PasswordHash, &user.Role, &email, &user.Phone, &user.IsActive,
		&room, &course, &year, &guardianName, &guardianPhone,
		&department, &qualification, &experience, &shift, &emergencyContact,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if email != nil {
		user.Email = *email
	}
	switch user.Role {
	case models.RoleStudent:
		user.Student = &models.StudentProfile{
			Room:          deref(room),
			Course:        deref(course),
			Year:          deref(year),
			GuardianName:  deref(guardianName),
			GuardianPhone: deref(guardianPhone),
		}
	case models.RoleWarden:
		user.Warden = &models.WardenProfile{
			Department:    deref(department),
			Qualification: deref(qualification),
			Experience:    deref(experience),
		}
	case models.RoleSecurity:
		user.Security = &models.SecurityProfile{
			Shift:            deref(shift),
			EmergencyContact: deref(emergencyContact),
			Experience:       deref(experience),
		}
	}
	return &user, nil
}

func studentField(u *models.User, get func(*models.StudentProfile) string) *string {
	if u.Student == nil {
		return nil
	}
	v := get(u.Student)
	return &v
}

func wardenField(u *models.User, get func(*models.WardenProfile) string) *string {
	if u.Warden == nil {
		return nil
	}
	v := get(u.Warden)
	return &v
}

func securityField(u *models.User, get func(*models.SecurityProfile) string) *string {
	if u.Security == nil {
		return nil
	}
	v := get(u.Security)
	return &v
}

// experienceField is shared by the warden and security profiles.
func experienceField(u *models.User) *string {
	switch {
	case u.Warden != nil:
		return &u.Warden.Experience
	case u.Security != nil:
		return &u.Security.Experience
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
