package activity

import "errors"

var (
	ErrActiveActivityExists = errors.New("another activity is already active in this session")
	ErrActivityNotFound     = errors.New("activity not found")
	ErrActivityNotActive    = errors.New("activity is not active")
	ErrInvalidActivityType  = errors.New("invalid activity type")
	ErrDestinationNotFound  = errors.New("destination not found on this activity")
	ErrNotActivityOwner     = errors.New("activity belongs to another employee")
)
