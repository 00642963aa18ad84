package overtime

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

type RecordResponse struct {
	ID                  int64   `json:"id"`
	AttendanceID        int64   `json:"attendance_id"`
	EmpCode             string  `json:"emp_code"`
	WorkDate            string  `json:"work_date"`
	ExtraHours          float64 `json:"extra_hours"`
	CompOffDays         float64 `json:"comp_off_days"`
	Status              string  `json:"status"`
	RequiresCMDApproval bool    `json:"requires_cmd_approval"`
	ExpiresOn           string  `json:"expires_on"`
	RecordingDeadline   string  `json:"recording_deadline"`
}

func ToRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:                  r.ID,
		AttendanceID:        r.AttendanceID,
		EmpCode:             r.EmpCode,
		WorkDate:            r.WorkDate.Format("2006-01-02"),
		ExtraHours:          r.ExtraHours,
		CompOffDays:         r.CompOffDays,
		Status:              string(r.Status),
		RequiresCMDApproval: r.RequiresCMDApproval,
		ExpiresOn:           r.ExpiresOn.Format("2006-01-02"),
		RecordingDeadline:   r.RecordingDeadline.Format("2006-01-02"),
	}
}

type RequestCompOffRequest struct {
	EmpCode   string  `json:"-"`
	RecordIDs []int64 `json:"record_ids"`
	Reason    string  `json:"reason"`
}

func (r *RequestCompOffRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.RecordIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "record_ids",
			Message: "at least one record id is required",
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

type ReviewCompOffRequest struct {
	ID         int64  `json:"-"`
	ReviewerID string `json:"-"` // emp_code of the reviewer
	Approve    bool   `json:"approve"`
	Comment    string `json:"comment,omitempty"`
}

type CompOffResponse struct {
	ID            int64            `json:"id"`
	EmpCode       string           `json:"emp_code"`
	TotalDays     float64          `json:"total_days"`
	Status        string           `json:"status"`
	ApproverCode  string           `json:"approver_code"`
	ReviewedBy    *string          `json:"reviewed_by,omitempty"`
	ReviewedAt    *string          `json:"reviewed_at,omitempty"`
	ReviewComment string           `json:"review_comment,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Records       []RecordResponse `json:"records,omitempty"`
	CreatedAt     string           `json:"created_at"`
}

func ToCompOffResponse(r CompOffRequest, records []Record) CompOffResponse {
	resp := CompOffResponse{
		ID:            r.ID,
		EmpCode:       r.EmpCode,
		TotalDays:     r.TotalDays,
		Status:        string(r.Status),
		ApproverCode:  r.ApproverCode,
		ReviewedBy:    r.ReviewedBy,
		ReviewComment: r.ReviewComment,
		Reason:        r.Reason,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.ReviewedAt != nil {
		s := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &s
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, ToRecordResponse(rec))
	}
	return resp
}
