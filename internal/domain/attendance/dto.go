package attendance

import (
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

type ClockInRequest struct {
	EmpCode   string  `json:"-"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmpCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "emp_code",
			Message: "emp_code is required",
		})
	}

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockOutRequest struct {
	EmpCode   string  `json:"-"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmpCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "emp_code",
			Message: "emp_code is required",
		})
	}

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionResponse struct {
	ID                 int64    `json:"id"`
	EmpCode            string   `json:"emp_code"`
	LoginTime          string   `json:"login_time"`
	LogoutTime         *string  `json:"logout_time,omitempty"`
	LoginAddress       string   `json:"login_address,omitempty"`
	LogoutAddress      *string  `json:"logout_address,omitempty"`
	TotalHours         *float64 `json:"total_hours,omitempty"`
	IsCompOffEligible  bool     `json:"is_comp_off_eligible"`
	IsLateArrival      bool     `json:"is_late_arrival"`
	LateByMinutes      int      `json:"late_by_minutes,omitempty"`
	AutoClockout       bool     `json:"auto_clockout,omitempty"`
	AutoClockoutReason string   `json:"auto_clockout_reason,omitempty"`
	IsWorkingDay       bool     `json:"is_working_day"`
	DayTypeReason      string   `json:"day_type_reason,omitempty"`
}

type StatusResponse struct {
	IsLoggedIn     bool             `json:"is_logged_in"`
	CurrentSession *SessionResponse `json:"current_session,omitempty"`
	CanClockIn     bool             `json:"can_clock_in"`
	CanClockOut    bool             `json:"can_clock_out"`
	Message        string           `json:"message,omitempty"`
}

type HistoryFilter struct {
	EmpCode string `json:"-"`
	Limit   int    `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 30 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type HistoryResponse struct {
	Sessions   []SessionResponse `json:"sessions"`
	TotalHours float64           `json:"total_hours"`
}
