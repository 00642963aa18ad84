package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const earthRadiusKm = 6371.0

// Coordinate is a WGS84 latitude/longitude pair. Business logic works with
// this type; the "lat, lon" string form exists only at the storage boundary.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ParseCoordinate parses the stored "lat, lon" form.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * (math.Pi / 180.0)
	dLon := (b.Lon - a.Lon) * (math.Pi / 180.0)

	lat1Rad := a.Lat * (math.Pi / 180.0)
	lat2Rad := b.Lat * (math.Pi / 180.0)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// HaversineMeters returns the great-circle distance in meters.
func HaversineMeters(a, b Coordinate) float64 {
	return HaversineKm(a, b) * 1000
}

// PathDistanceKm sums the pairwise haversine distance over an ordered path.
// Fewer than two points yields zero.
func PathDistanceKm(points []Coordinate) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += HaversineKm(points[i-1], points[i])
	}
	return total
}
