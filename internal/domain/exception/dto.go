package exception

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

type CreateExceptionRequest struct {
	EmpCode     string `json:"-"`
	Type        string `json:"-"` // set by the route: late_arrival or early_leave
	Date        string `json:"date"`         // YYYY-MM-DD
	PlannedTime string `json:"planned_time"` // RFC3339: expected arrival or planned departure
	Reason      string `json:"reason"`
}

func (r *CreateExceptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Type(r.Type).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be late_arrival or early_leave",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if _, ok := validator.IsValidDateTime(r.PlannedTime); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "planned_time",
			Message: "planned_time must be an RFC3339 timestamp",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReviewExceptionRequest struct {
	ID         int64  `json:"-"`
	ReviewerID string `json:"-"` // emp_code of the reviewer
	Approve    bool   `json:"approve"`
	Comment    string `json:"comment,omitempty"`
}

type ExceptionResponse struct {
	ID            int64   `json:"id"`
	EmpCode       string  `json:"emp_code"`
	Type          string  `json:"type"`
	Date          string  `json:"date"`
	PlannedTime   string  `json:"planned_time"`
	Minutes       int     `json:"minutes"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	ApproverCode  string  `json:"approver_code"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	ReviewComment string  `json:"review_comment,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type TeamSummaryResponse struct {
	Pending    int                 `json:"pending"`
	Approved   int                 `json:"approved"`
	Rejected   int                 `json:"rejected"`
	Exceptions []ExceptionResponse `json:"exceptions"`
}

func ToResponse(e Exception) ExceptionResponse {
	resp := ExceptionResponse{
		ID:            e.ID,
		EmpCode:       e.EmpCode,
		Type:          string(e.Type),
		Date:          e.Date.Format("2006-01-02"),
		PlannedTime:   e.PlannedTime.Format(time.RFC3339),
		Minutes:       e.Minutes,
		Reason:        e.Reason,
		Status:        string(e.Status),
		ApproverCode:  e.ApproverCode,
		ReviewedBy:    e.ReviewedBy,
		ReviewComment: e.ReviewComment,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	if e.ReviewedAt != nil {
		s := e.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}
