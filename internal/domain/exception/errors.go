package exception

import "errors"

var (
	ErrExceptionNotFound   = errors.New("attendance exception not found")
	ErrAlreadyReviewed     = errors.New("exception has already been approved or rejected")
	ErrNotAssignedApprover = errors.New("only the assigned approver can review this exception")
	ErrInvalidType         = errors.New("exception type must be late_arrival or early_leave")
	ErrDuplicatePending    = errors.New("a pending exception of this type already exists for that day")
	ErrNoApprover          = errors.New("no approver configured for this employee")
)
