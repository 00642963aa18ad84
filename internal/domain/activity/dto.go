package activity

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

type StartActivityRequest struct {
	EmpCode      string             `json:"-"`
	ActivityType string             `json:"activity_type"`
	Latitude     *float64           `json:"latitude,omitempty"`
	Longitude    *float64           `json:"longitude,omitempty"`
	Remarks      string             `json:"remarks,omitempty"`
	Destinations []DestinationInput `json:"destinations,omitempty"`
}

type DestinationInput struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

func (r *StartActivityRequest) Validate() error {
	var errs validator.ValidationErrors

	t := Type(r.ActivityType)
	if !t.Valid() || t == TypeDistanceAlert {
		errs = append(errs, validator.ValidationError{
			Field:   "activity_type",
			Message: "activity_type must be one of: meal_break, tea_break, rest_break, branch_visit, field_visit",
		})
	}

	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	for _, d := range r.Destinations {
		if validator.IsEmpty(d.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "destinations",
				Message: "destination name is required",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndActivityRequest struct {
	EmpCode    string `json:"-"`
	ActivityID int64  `json:"-"`
}

type MarkDestinationRequest struct {
	EmpCode    string `json:"-"`
	ActivityID int64  `json:"-"`
	Order      int    `json:"order"`
}

type ActivityResponse struct {
	ID              int64         `json:"id"`
	AttendanceID    int64         `json:"attendance_id"`
	EmpCode         string        `json:"emp_code"`
	ActivityType    string        `json:"activity_type"`
	Status          string        `json:"status"`
	StartTime       string        `json:"start_time"`
	EndTime         *string       `json:"end_time,omitempty"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
	Remarks         string        `json:"remarks,omitempty"`
	Destinations    []Destination `json:"destinations,omitempty"`
	FieldVisitID    *int64        `json:"field_visit_id,omitempty"`
}

func ToResponse(a Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:              a.ID,
		AttendanceID:    a.AttendanceID,
		EmpCode:         a.EmpCode,
		ActivityType:    string(a.Type),
		Status:          string(a.Status),
		StartTime:       a.StartTime.Format(time.RFC3339),
		DurationMinutes: a.DurationMinutes,
		Remarks:         a.Remarks,
		Destinations:    a.Destinations,
	}
	if a.EndTime != nil {
		s := a.EndTime.Format(time.RFC3339)
		resp.EndTime = &s
	}
	return resp
}
