package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of Earth used for haversine distance.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinates signals a latitude/longitude outside the valid range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is a position in floating-point degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPoint validates and creates a Point.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Latitude: lat, Longitude: lon}
	if !p.Valid() {
		return Point{}, fmt.Errorf("%w: (%g, %g)", ErrInvalidCoordinates, lat, lon)
	}
	return p, nil
}

// Valid reports whether latitude is in [-90,90] and longitude in [-180,180].
// NaN fails both comparisons.
func (p Point) Valid() bool {
	return ValidateCoordinates(p.Latitude, p.Longitude)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Latitude, p.Longitude)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Haversine returns the great-circle distance in kilometers between two points
// specified by latitude and longitude in degrees.
//
// The longitude delta enters only through sin²(Δλ/2), so deltas across the
// antimeridian wrap naturally. The haversine term is clamped to [0,1] so that
// rounding near antipodal points cannot push sqrt(1-a) into NaN.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	sLat := math.Sin(dLat / 2)
	sLon := math.Sin(dLon / 2)
	a := sLat*sLat + math.Cos(lat1r)*math.Cos(lat2r)*sLon*sLon
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceKm returns the haversine distance between two points in kilometers.
func DistanceKm(a, b Point) float64 {
	return Haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}
