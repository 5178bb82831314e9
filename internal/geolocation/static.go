package geolocation

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/daefinder/internal/domain"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

// Static answers with a fixed position, typically taken from flags or config.
type Static struct {
	point geo.Point
}

// NewStatic validates the coordinates and returns a Static locator.
func NewStatic(lat, lon float64) (*Static, error) {
	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		return nil, fmt.Errorf("%w: static location: %w", domain.ErrLocationUnavailable, err)
	}
	return &Static{point: p}, nil
}

// Locate returns the configured point.
func (s *Static) Locate(ctx context.Context) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	return s.point, nil
}

// HealthCheck always succeeds.
func (s *Static) HealthCheck(context.Context) error { return nil }

// Close is a no-op.
func (s *Static) Close() error { return nil }
