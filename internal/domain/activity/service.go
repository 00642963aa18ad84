package activity

import (
	"context"
)

type Service interface {
	// Start begins an activity in the employee's open session. Visit
	// activities also open a field visit for GPS tracking.
	Start(ctx context.Context, req StartActivityRequest) (ActivityResponse, error)

	// End completes an active activity and records its duration. Visit
	// activities also close their field visit.
	End(ctx context.Context, req EndActivityRequest) (ActivityResponse, error)

	// MarkDestinationVisited flags one planned stop as visited
	MarkDestinationVisited(ctx context.Context, req MarkDestinationRequest) (ActivityResponse, error)

	// ListToday returns the activities of the employee's open session
	ListToday(ctx context.Context, empCode string) ([]ActivityResponse, error)
}
