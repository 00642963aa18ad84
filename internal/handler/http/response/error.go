package response

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/activity"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/exception"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/leave"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/overtime"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, auth.ErrOTPNotFound),
		errors.Is(err, auth.ErrOTPExpired),
		errors.Is(err, auth.ErrOTPInvalid),
		errors.Is(err, auth.ErrOTPAlreadyUsed),
		errors.Is(err, auth.ErrOTPAttemptsExceeded):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrRefreshTokenRevoked),
		errors.Is(err, auth.ErrRefreshTokenReused):
		Unauthorized(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, err.Error())
	case errors.Is(err, employee.ErrShiftNotFound):
		NotFound(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyActiveSession),
		errors.Is(err, attendance.ErrSingleClockInOnly):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNoActiveSession):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrEarlyLeaveNotApproved):
		earlyLeave(w, err)
	case errors.Is(err, attendance.ErrAlreadyAutoClockedOut):
		alreadyAutoClockedOut(w, err)
	case errors.Is(err, attendance.ErrSessionNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidLocation):
		BadRequest(w, err.Error(), nil)

	// Activity domain errors
	case errors.Is(err, activity.ErrActiveActivityExists):
		Conflict(w, err.Error())
	case errors.Is(err, activity.ErrActivityNotFound),
		errors.Is(err, activity.ErrDestinationNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, activity.ErrActivityNotActive):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, activity.ErrNotActivityOwner):
		Forbidden(w, err.Error())

	// Field visit domain errors
	case errors.Is(err, fieldvisit.ErrVisitNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, fieldvisit.ErrNoActiveVisit),
		errors.Is(err, fieldvisit.ErrVisitCompleted),
		errors.Is(err, fieldvisit.ErrInvalidTimestamp):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, fieldvisit.ErrNotVisitOwner):
		Forbidden(w, err.Error())

	// Exception domain errors
	case errors.Is(err, exception.ErrExceptionNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, exception.ErrDuplicatePending):
		Conflict(w, err.Error())
	case errors.Is(err, exception.ErrAlreadyReviewed):
		Conflict(w, err.Error())
	case errors.Is(err, exception.ErrNotAssignedApprover):
		Forbidden(w, err.Error())
	case errors.Is(err, exception.ErrNoApprover):
		BadRequest(w, err.Error(), nil)

	// Overtime domain errors
	case errors.Is(err, overtime.ErrRecordNotFound),
		errors.Is(err, overtime.ErrRequestNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, overtime.ErrRecordNotEligible),
		errors.Is(err, overtime.ErrRecordExpired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, overtime.ErrRequestAlreadyReviewed),
		errors.Is(err, overtime.ErrRequestNotPending):
		Conflict(w, err.Error())
	case errors.Is(err, overtime.ErrNoRecordsSelected):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, overtime.ErrNotAssignedApprover):
		Forbidden(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, leave.ErrOverlappingLeave),
		errors.Is(err, leave.ErrLeaveRequestAlreadyReviewed):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrNotAssignedApprover):
		Forbidden(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

// earlyLeave includes how early the attempt was so the client can show
// the remaining time.
func earlyLeave(w http.ResponseWriter, err error) {
	details := map[string]string{}
	var ele *attendance.EarlyLeaveError
	if errors.As(err, &ele) {
		details["early_by_minutes"] = strconv.Itoa(ele.EarlyByMinutes)
	}
	writeJSON(w, http.StatusForbidden, Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    "EARLY_LEAVE_NOT_APPROVED",
			Message: attendance.ErrEarlyLeaveNotApproved.Error(),
			Details: details,
		},
	})
}

// alreadyAutoClockedOut reports the recorded closure so the client can
// show when and why the sweep closed the session.
func alreadyAutoClockedOut(w http.ResponseWriter, err error) {
	details := map[string]string{}
	var aco *attendance.AutoClockedOutError
	if errors.As(err, &aco) {
		details["logout_time"] = aco.LogoutTime.Format(time.RFC3339)
		if aco.Reason != "" {
			details["reason"] = aco.Reason
		}
	}
	writeJSON(w, http.StatusConflict, Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    "ALREADY_AUTO_CLOCKED_OUT",
			Message: attendance.ErrAlreadyAutoClockedOut.Error(),
			Details: details,
		},
	})
}
