package geo

import (
	"fmt"
	"math"
	"time"
)

// EarthRadius is the mean radius of the Earth in meters, used by the
// haversine distance calculation.
const EarthRadius = 6371000.0

// Location is a single GPS fix. Accuracy is the reported horizontal
// accuracy in meters; zero means the source did not report one.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  float64   `json:"accuracy,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (l *Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", l.Longitude)
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters
// using the haversine formula.
func Distance(a, b Location) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// WithinBoundary reports whether p lies inside (or exactly on) the
// circle of radiusMeters around center.
func WithinBoundary(p, center Location, radiusMeters float64) bool {
	return Distance(p, center) <= radiusMeters
}
