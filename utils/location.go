package utils

import (
	"math"
	"time"
)

// UnknownDistanceKm stands in for "location unknown" so that sorting and
// radius filters can treat it as very far away.
const UnknownDistanceKm = 99999.0

// jitterFloorKm is the GPS noise floor below which two points are the same.
const jitterFloorKm = 0.01

// HaversineDistance calculates the distance between two points on Earth using the Haversine formula
// Returns distance in kilometers
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// DistanceKm returns the great-circle distance, UnknownDistanceKm when any
// coordinate is missing (zero), and 0 below the jitter floor.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == 0 || lon1 == 0 || lat2 == 0 || lon2 == 0 {
		return UnknownDistanceKm
	}
	d := HaversineDistance(lat1, lon1, lat2, lon2)
	if d < jitterFloorKm {
		return 0
	}
	return d
}

// DistanceKmPtr is DistanceKm for optional coordinates.
func DistanceKmPtr(lat1, lon1, lat2, lon2 *float64) float64 {
	return DistanceKm(deref(lat1), deref(lon1), deref(lat2), deref(lon2))
}

// IsKnownDistance reports whether d came from real coordinates.
func IsKnownDistance(d float64) bool {
	return d < UnknownDistanceKm
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// IsLocationValid checks if the provided coordinates are valid
func IsLocationValid(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// IsLocationRecent checks if the location was updated within maxAge.
func IsLocationRecent(lastUpdate *time.Time, maxAge time.Duration) bool {
	if lastUpdate == nil {
		return false
	}
	return time.Since(*lastUpdate) <= maxAge
}
