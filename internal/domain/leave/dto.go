package leave

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

type ApplyLeaveRequest struct {
	EmpCode   string `json:"-"`
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Type(r.LeaveType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of: casual, sick, earned, comp_off",
		})
	}

	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
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

type ReviewLeaveRequest struct {
	ID         int64  `json:"-"`
	ReviewerID string `json:"-"` // emp_code of the reviewer
	Approve    bool   `json:"approve"`
}

type LeaveResponse struct {
	ID           int64   `json:"id"`
	EmpCode      string  `json:"emp_code"`
	LeaveType    string  `json:"leave_type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Days         int     `json:"days"`
	Reason       string  `json:"reason"`
	Status       string  `json:"status"`
	ApproverCode string  `json:"approver_code"`
	ReviewedBy   *string `json:"reviewed_by,omitempty"`
	ReviewedAt   *string `json:"reviewed_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func ToResponse(r LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:           r.ID,
		EmpCode:      r.EmpCode,
		LeaveType:    string(r.LeaveType),
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		Days:         r.Days(),
		Reason:       r.Reason,
		Status:       string(r.Status),
		ApproverCode: r.ApproverCode,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReviewedBy != nil {
		resp.ReviewedBy = r.ReviewedBy
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	return resp
}
