package overtime

import (
	"context"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
)

type Service interface {
	// Accrue evaluates a closed session for comp-off credit. It is
	// idempotent per session and returns nil when nothing accrues.
	Accrue(ctx context.Context, session attendance.Session) (*Record, error)

	// Records returns the employee's overtime records, expiring stale
	// ones on read.
	Records(ctx context.Context, empCode string) ([]RecordResponse, error)

	// RequestCompOff bundles eligible records into an approval request
	RequestCompOff(ctx context.Context, req RequestCompOffRequest) (CompOffResponse, error)

	// ReviewCompOff approves or rejects a pending request
	ReviewCompOff(ctx context.Context, req ReviewCompOffRequest) (CompOffResponse, error)

	// CancelCompOff cancels a pending request; its records revert to eligible
	CancelCompOff(ctx context.Context, empCode string, requestID int64) (CompOffResponse, error)

	// MyCompOffRequests / TeamCompOffRequests list requests by side
	MyCompOffRequests(ctx context.Context, empCode string) ([]CompOffResponse, error)
	TeamCompOffRequests(ctx context.Context, approverCode string) ([]CompOffResponse, error)

	// ExpireSweep marks overdue eligible records expired
	ExpireSweep(ctx context.Context) (int, error)
}
