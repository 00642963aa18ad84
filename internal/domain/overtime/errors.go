package overtime

import "errors"

var (
	ErrRecordNotFound         = errors.New("overtime record not found")
	ErrRecordNotEligible      = errors.New("overtime record is not eligible for a comp-off request")
	ErrRecordExpired          = errors.New("overtime record has expired")
	ErrRequestNotFound        = errors.New("comp-off request not found")
	ErrRequestAlreadyReviewed = errors.New("comp-off request has already been reviewed")
	ErrRequestNotPending      = errors.New("comp-off request is not pending")
	ErrNotAssignedApprover    = errors.New("only the assigned approver can review this request")
	ErrNoRecordsSelected      = errors.New("at least one overtime record is required")
)
