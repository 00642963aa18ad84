package fieldvisit

import "errors"

var (
	ErrNoActiveVisit    = errors.New("no active field visit")
	ErrVisitNotFound    = errors.New("field visit not found")
	ErrVisitCompleted   = errors.New("field visit is already completed")
	ErrNotVisitOwner    = errors.New("field visit belongs to another employee")
	ErrInvalidTimestamp = errors.New("tracking point timestamp is invalid")
)
