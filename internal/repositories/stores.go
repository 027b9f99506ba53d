// Package repositories holds the persistence layer: store interfaces
// consumed by the services, a PostgreSQL implementation used in
// production, and an in-memory implementation used by tests.
//
// Error contract for all stores:
//   - apperrors.KindNotFound when the requested record does not exist
//   - apperrors.KindConflict when a uniqueness rule or a conditional
//     update loses against a concurrent write
//   - plain wrapped errors for infrastructure failures
package repositories

import (
	"context"
	"time"

	"hostel-backend/internal/models"
)

// UserStore is the identity directory: user records keyed by id, with
// email lookup and student provisioning.
type UserStore interface {
	// CreateStudent inserts a student atomically with the uniqueness
	// and room-capacity checks: duplicate id or email is a conflict,
	// a room already holding models.MaxRoomOccupancy students is a
	// guard violation. Two concurrent inserts into the last room slot
	// must not both succeed.
	CreateStudent(ctx context.Context, user *models.User) error
	// Create inserts a staff user (warden, security) with the same id
	// and email uniqueness rules.
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.User, error)
	Search(ctx context.Context, query string, role models.Role, limit int) ([]*models.User, error)
	// Update replaces the mutable fields of an existing user. Email
	// uniqueness still applies.
	Update(ctx context.Context, user *models.User) error
	// Delete removes a user. Callers must refuse deletion while any
	// gate pass references the user; the store only removes the row.
	Delete(ctx context.Context, id string) error
	CountInRoom(ctx context.Context, room string) (int, error)
	// RoomOccupancy maps each room to its count of active students.
	// Rooms with no active residents are absent from the map.
	RoomOccupancy(ctx context.Context) (map[string]int, error)
}

// GatePassStore is the pass ledger. List results are deterministically
// ordered: pending and per-student listings newest-created first,
// approved by requested out date descending, currently-out by actual
// exit time descending.
type GatePassStore interface {
	// Create inserts a new pass. At most one Pending pass and one
	// Approved/Out pass may exist per student; a second concurrent
	// insert must fail with a conflict even when both callers passed
	// the service-level guard.
	Create(ctx context.Context, pass *models.GatePass) error
	FindByID(ctx context.Context, passID string) (*models.GatePass, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.GatePass, error)
	ListPending(ctx context.Context) ([]*models.GatePass, error)
	ListApproved(ctx context.Context) ([]*models.GatePass, error)
	ListCurrentlyOut(ctx context.Context) ([]*models.GatePass, error)
	ListFiltered(ctx context.Context, filter models.GatePassFilter) ([]*models.GatePass, error)
	CountPending(ctx context.Context) (int, error)
	CountApprovedForDate(ctx context.Context, date time.Time) (int, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
	// CountCreatedBetween counts passes created in [from, to).
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	HasPending(ctx context.Context, studentID string) (bool, error)
	IsCurrentlyOut(ctx context.Context, studentID string) (bool, error)
	// Update replaces the whole record, conditioned on the approval
	// and exit status the caller read before mutating. When the stored
	// record has moved on in the meantime the update is refused with a
	// conflict, so two racing decisions can never both commit.
	Update(ctx context.Context, pass *models.GatePass, fromStatus models.Status, fromExit models.ExitStatus) error
}
