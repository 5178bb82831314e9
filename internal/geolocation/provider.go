package geolocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/daefinder/internal/config"
	"github.com/kailas-cloud/daefinder/internal/domain"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

// Provider resolves the user's position and reports whether it can.
type Provider interface {
	Locate(ctx context.Context) (geo.Point, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

var (
	_ Provider = (*Static)(nil)
	_ Provider = (*GeoIP)(nil)
	_ Provider = (*Unavailable)(nil)
)

// New builds the provider selected by cfg. It never returns nil: a provider
// that cannot be built is replaced by an Unavailable carrying the cause.
func New(cfg config.GeolocationConfig) Provider {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case config.ProviderGeoIP:
		p, err = OpenGeoIP(cfg.GeoIPDB, cfg.IP)
	default:
		p, err = NewStatic(cfg.Latitude, cfg.Longitude)
	}
	if err != nil {
		return NewUnavailable(err)
	}
	return p
}

// Unavailable fails every Locate and HealthCheck with ErrLocationUnavailable.
type Unavailable struct {
	err error
}

// NewUnavailable wraps cause as a location failure.
func NewUnavailable(cause error) *Unavailable {
	if cause == nil {
		cause = errors.New("no provider")
	}
	return &Unavailable{err: wrapUnavailable(cause)}
}

// Locate returns the build failure.
func (u *Unavailable) Locate(context.Context) (geo.Point, error) {
	return geo.Point{}, u.err
}

// HealthCheck returns the build failure.
func (u *Unavailable) HealthCheck(context.Context) error { return u.err }

// Close is a no-op.
func (u *Unavailable) Close() error { return nil }

func wrapUnavailable(err error) error {
	if errors.Is(err, domain.ErrLocationUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
}
