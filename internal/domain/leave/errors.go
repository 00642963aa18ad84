package leave

import "errors"

var (
	ErrLeaveRequestNotFound        = errors.New("leave request not found")
	ErrLeaveRequestAlreadyReviewed = errors.New("leave request has already been approved or rejected")
	ErrInvalidLeaveType            = errors.New("invalid leave type")
	ErrInvalidDateRange            = errors.New("end date must not be before start date")
	ErrNotAssignedApprover         = errors.New("only the assigned approver can review this request")
	ErrOverlappingLeave            = errors.New("an approved or pending leave already covers these dates")
)
