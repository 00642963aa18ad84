package fieldvisit

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"
)

type TrackRequest struct {
	EmpCode    string   `json:"-"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	RecordedAt string   `json:"recorded_at,omitempty"` // RFC3339, defaults to now
	SpeedKmh   *float64 `json:"speed_kmh,omitempty"`
	AccuracyM  *float64 `json:"accuracy_m,omitempty"`
}

func (r *TrackRequest) Validate() error {
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
	if r.RecordedAt != "" {
		if _, ok := validator.IsValidDateTime(r.RecordedAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "recorded_at",
				Message: "recorded_at must be an RFC3339 timestamp",
			})
		}
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

type TrackResponse struct {
	FieldVisitID    int64   `json:"field_visit_id"`
	PointCount      int     `json:"point_count"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

type VisitResponse struct {
	ID              int64   `json:"id"`
	ActivityID      *int64  `json:"activity_id,omitempty"`
	EmpCode         string  `json:"emp_code"`
	VisitDate       string  `json:"visit_date"`
	Status          string  `json:"status"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time,omitempty"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

type PointResponse struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	RecordedAt string   `json:"recorded_at"`
	SpeedKmh   *float64 `json:"speed_kmh,omitempty"`
	IsAuto     bool     `json:"is_auto"`
}

type RouteResponse struct {
	Visit  VisitResponse   `json:"visit"`
	Points []PointResponse `json:"points"`
}

// DaySummaryResponse aggregates an employee's visits for one day.
type DaySummaryResponse struct {
	Date            string          `json:"date"`
	VisitCount      int             `json:"visit_count"`
	TotalDistanceKm float64         `json:"total_distance_km"`
	AvgSpeedKmh     float64         `json:"avg_speed_kmh"`
	MaxSpeedKmh     float64         `json:"max_speed_kmh"`
	StopCount       int             `json:"stop_count"`
	Visits          []VisitResponse `json:"visits"`
}

func ToVisitResponse(v FieldVisit) VisitResponse {
	resp := VisitResponse{
		ID:              v.ID,
		ActivityID:      v.ActivityID,
		EmpCode:         v.EmpCode,
		VisitDate:       v.VisitDate.Format("2006-01-02"),
		Status:          string(v.Status),
		StartTime:       v.StartTime.Format(time.RFC3339),
		TotalDistanceKm: v.TotalDistanceKm,
	}
	if v.EndTime != nil {
		s := v.EndTime.Format(time.RFC3339)
		resp.EndTime = &s
	}
	return resp
}

func ToPointResponse(p TrackingPoint) PointResponse {
	return PointResponse{
		Latitude:   p.Location.Lat,
		Longitude:  p.Location.Lon,
		RecordedAt: p.RecordedAt.Format(time.RFC3339),
		SpeedKmh:   p.SpeedKmh,
		IsAuto:     p.IsAuto,
	}
}
