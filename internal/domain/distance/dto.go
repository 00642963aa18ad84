package distance

import (
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

type CheckRequest struct {
	EmpCode   string   `json:"-"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedKmh  *float64 `json:"speed_kmh,omitempty"`
}

func (r *CheckRequest) Validate() error {
	var errs validator.ValidationErrors

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
	if r.SpeedKmh != nil && *r.SpeedKmh < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "speed_kmh",
			Message: "speed_kmh must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Outcome of a distance check.
const (
	OutcomeNoSession     = "no_session"
	OutcomeNonWorkingDay = "non_working_day"
	OutcomeMoving        = "moving"
	OutcomeWithinRadius  = "within_radius"
	OutcomeAlertRaised   = "alert_raised"
	OutcomeAlertActive   = "alert_active"
)

type CheckResponse struct {
	Outcome     string  `json:"outcome"`
	DistanceKm  float64 `json:"distance_km,omitempty"`
	ThresholdKm float64 `json:"threshold_km,omitempty"`
	AlertID     *int64  `json:"alert_id,omitempty"`
	AlertRemark string  `json:"alert_remark,omitempty"`
}

type AlertResponse struct {
	ActivityID int64   `json:"activity_id"`
	EmpCode    string  `json:"emp_code"`
	StartTime  string  `json:"start_time"`
	Remarks    string  `json:"remarks"`
	DistanceKm float64 `json:"distance_km,omitempty"`
}
