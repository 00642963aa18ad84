package fieldvisit

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

// FieldVisit is a GPS-tracked outing, opened by a visit activity and fed
// by an append-only trail of tracking points.
type FieldVisit struct {
	ID              int64
	ActivityID      *int64
	EmpCode         string
	VisitDate       time.Time
	Status          Status
	StartTime       time.Time
	EndTime         *time.Time
	TotalDistanceKm float64
	CreatedAt       time.Time
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// TrackingPoint is one GPS ping on a field visit. Points are never
// updated or deleted.
type TrackingPoint struct {
	ID           int64
	FieldVisitID int64
	EmpCode      string
	Location     geo.Coordinate
	RecordedAt   time.Time
	SpeedKmh     *float64
	AccuracyM    *float64
	IsAuto       bool
	CreatedAt    time.Time
}
