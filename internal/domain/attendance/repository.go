package attendance

import (
	"context"
	"time"
)

// SessionRepository defines data access methods for attendance sessions.
type SessionRepository interface {
	// Create inserts a new session. The partial unique index on open
	// sessions makes concurrent clock-ins surface ErrAlreadyActiveSession.
	Create(ctx context.Context, session Session) (Session, error)

	// GetByID retrieves a session by ID
	GetByID(ctx context.Context, id int64) (Session, error)

	// GetOpenSession returns the employee's open session, nil if none
	GetOpenSession(ctx context.Context, empCode string) (*Session, error)

	// HasSessionOnDate reports whether any session started on the given
	// local calendar day. Clock-in uses it to flag second working-day
	// sessions comp-off eligible and to cap non-working days at one.
	HasSessionOnDate(ctx context.Context, empCode string, dayStart, dayEnd time.Time) (bool, error)

	// GetAutoClosedOnDate returns the newest session of the local day
	// that the auto clock-out sweep closed, nil if none.
	GetAutoClosedOnDate(ctx context.Context, empCode string, dayStart, dayEnd time.Time) (*Session, error)

	// Update updates an existing session
	Update(ctx context.Context, session Session) error

	// ListRecent returns the employee's most recent sessions, newest first
	ListRecent(ctx context.Context, empCode string, limit int) ([]Session, error)

	// ListOpenSessions returns all open sessions across employees
	ListOpenSessions(ctx context.Context) ([]Session, error)
}
