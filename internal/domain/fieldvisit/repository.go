package fieldvisit

import (
	"context"
	"time"
)

type FieldVisitRepository interface {
	CreateVisit(ctx context.Context, visit FieldVisit) (FieldVisit, error)
	GetVisitByID(ctx context.Context, id int64) (FieldVisit, error)

	// GetActiveVisit returns the employee's active visit, nil if none
	GetActiveVisit(ctx context.Context, empCode string) (*FieldVisit, error)

	// GetVisitByActivity returns the visit opened by an activity, nil if none
	GetVisitByActivity(ctx context.Context, activityID int64) (*FieldVisit, error)

	UpdateVisit(ctx context.Context, visit FieldVisit) error

	ListVisitsByDate(ctx context.Context, empCode string, date time.Time) ([]FieldVisit, error)

	// ListActiveVisits returns all active visits across employees, for
	// the auto-tracking sweep.
	ListActiveVisits(ctx context.Context) ([]FieldVisit, error)

	CreatePoint(ctx context.Context, point TrackingPoint) (TrackingPoint, error)

	// ListPoints returns the visit's points in chronological order
	ListPoints(ctx context.Context, fieldVisitID int64) ([]TrackingPoint, error)

	// GetLastPoint returns the newest point of the visit, nil if none
	GetLastPoint(ctx context.Context, fieldVisitID int64) (*TrackingPoint, error)
}
