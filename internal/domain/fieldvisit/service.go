package fieldvisit

import (
	"context"
	"time"
)

type Service interface {
	// Track appends a GPS point to the employee's active visit and
	// recomputes the visit's total path distance.
	Track(ctx context.Context, req TrackRequest) (TrackResponse, error)

	// History returns the employee's visits for a day
	History(ctx context.Context, empCode string, date time.Time) ([]VisitResponse, error)

	// Route returns a visit with its full ordered point trail
	Route(ctx context.Context, empCode string, visitID int64) (RouteResponse, error)

	// DaySummary aggregates visit statistics for a day
	DaySummary(ctx context.Context, empCode string, date time.Time) (DaySummaryResponse, error)

	// SweepActiveVisits appends an auto point to every active visit whose
	// trail has gone stale, reusing the last known location. Returns the
	// number of points recorded.
	SweepActiveVisits(ctx context.Context, staleAfter time.Duration) (int, error)
}
