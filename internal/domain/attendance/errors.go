package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Attendance domain errors
var (
	// Clock-in errors
	ErrAlreadyActiveSession = errors.New("you already have an active session")
	ErrSingleClockInOnly    = errors.New("you have already clocked in on this non-working day; only one session is allowed")

	// Clock-out errors
	ErrNoActiveSession       = errors.New("you have no active session")
	ErrEarlyLeaveNotApproved = errors.New("clocking out before shift end requires an approved early leave request")
	ErrAlreadyAutoClockedOut = errors.New("session was already closed by auto clock-out")

	// General errors
	ErrSessionNotFound = errors.New("attendance session not found")
	ErrInvalidLocation = errors.New("invalid GPS location")
)

// EarlyLeaveError carries how early the clock-out attempt was. It unwraps
// to ErrEarlyLeaveNotApproved so handlers can match it.
type EarlyLeaveError struct {
	EarlyByMinutes int
}

func (e *EarlyLeaveError) Error() string {
	return fmt.Sprintf("%s (early by %d minutes)", ErrEarlyLeaveNotApproved.Error(), e.EarlyByMinutes)
}

func (e *EarlyLeaveError) Unwrap() error {
	return ErrEarlyLeaveNotApproved
}

// AutoClockedOutError carries the recorded closure, so a clock-out attempt
// after the sweep reads back what was stored rather than writing again.
// It unwraps to ErrAlreadyAutoClockedOut.
type AutoClockedOutError struct {
	LogoutTime time.Time
	Reason     string
}

func (e *AutoClockedOutError) Error() string {
	return fmt.Sprintf("%s at %s", ErrAlreadyAutoClockedOut.Error(), e.LogoutTime.Format(time.RFC3339))
}

func (e *AutoClockedOutError) Unwrap() error {
	return ErrAlreadyAutoClockedOut
}
