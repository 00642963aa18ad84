package overtime

import (
	"context"
	"time"
)

type OvertimeRepository interface {
	CreateRecord(ctx context.Context, record Record) (Record, error)
	GetRecordByID(ctx context.Context, id int64) (Record, error)

	// GetRecordByAttendance returns the session's record, nil if none.
	// Backs accrual idempotence.
	GetRecordByAttendance(ctx context.Context, attendanceID int64) (*Record, error)

	ListRecordsByEmployee(ctx context.Context, empCode string, status *RecordStatus) ([]Record, error)

	// CountRecordsInMonth counts records accrued in the work-date month,
	// for the approval-tier decision.
	CountRecordsInMonth(ctx context.Context, empCode string, year int, month time.Month) (int, error)

	UpdateRecord(ctx context.Context, record Record) error

	// ExpireRecords marks eligible records past their expiry as expired
	// and returns how many changed.
	ExpireRecords(ctx context.Context, asOf time.Time) (int, error)

	CreateRequest(ctx context.Context, request CompOffRequest) (CompOffRequest, error)
	GetRequestByID(ctx context.Context, id int64) (CompOffRequest, error)
	UpdateRequest(ctx context.Context, request CompOffRequest) error
	ListRequestsByEmployee(ctx context.Context, empCode string) ([]CompOffRequest, error)
	ListRequestsByApprover(ctx context.Context, approverCode string) ([]CompOffRequest, error)
	ListRecordsByRequest(ctx context.Context, requestID int64) ([]Record, error)
}
