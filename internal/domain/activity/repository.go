package activity

import (
	"context"
)

// ActivityRepository defines data access for session activities.
type ActivityRepository interface {
	// Create inserts an activity. The partial unique index on active
	// activities makes a concurrent second start surface
	// ErrActiveActivityExists.
	Create(ctx context.Context, activity Activity) (Activity, error)

	GetByID(ctx context.Context, id int64) (Activity, error)

	// GetActiveBySession returns the session's active activity, nil if none
	GetActiveBySession(ctx context.Context, attendanceID int64) (*Activity, error)

	// GetActiveByType returns the session's active activity of the given
	// type, nil if none. The distance monitor uses it for alert dedup.
	GetActiveByType(ctx context.Context, attendanceID int64, activityType Type) (*Activity, error)

	Update(ctx context.Context, activity Activity) error

	ListBySession(ctx context.Context, attendanceID int64) ([]Activity, error)
}
