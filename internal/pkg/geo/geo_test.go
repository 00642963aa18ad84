package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate("12.9716, 77.5946")
	require.NoError(t, err)
	assert.InDelta(t, 12.9716, c.Lat, 1e-9)
	assert.InDelta(t, 77.5946, c.Lon, 1e-9)

	_, err = ParseCoordinate("12.9716")
	assert.Error(t, err)

	_, err = ParseCoordinate("abc, def")
	assert.Error(t, err)
}

func TestCoordinateStringRoundTrip(t *testing.T) {
	orig := Coordinate{Lat: 12.9716, Lon: 77.5946}
	parsed, err := ParseCoordinate(orig.String())
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)
}

func TestHaversineKm(t *testing.T) {
	// Bangalore to Chennai, roughly 290 km.
	blr := Coordinate{Lat: 12.9716, Lon: 77.5946}
	maa := Coordinate{Lat: 13.0827, Lon: 80.2707}

	d := HaversineKm(blr, maa)
	assert.InDelta(t, 290, d, 10)

	assert.Zero(t, HaversineKm(blr, blr))
}

func TestPathDistanceKm(t *testing.T) {
	a := Coordinate{Lat: 12.9716, Lon: 77.5946}
	b := Coordinate{Lat: 12.9816, Lon: 77.6046}
	c := Coordinate{Lat: 12.9916, Lon: 77.6146}

	assert.Zero(t, PathDistanceKm(nil))
	assert.Zero(t, PathDistanceKm([]Coordinate{a}))

	total := PathDistanceKm([]Coordinate{a, b, c})
	assert.InDelta(t, HaversineKm(a, b)+HaversineKm(b, c), total, 1e-9)
	assert.Greater(t, total, 0.0)
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, Coordinate{Lat: 0, Lon: 0}.Valid())
	assert.False(t, Coordinate{Lat: 91, Lon: 0}.Valid())
	assert.False(t, Coordinate{Lat: 0, Lon: -181}.Valid())
}
