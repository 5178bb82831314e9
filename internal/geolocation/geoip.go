package geolocation

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"

	"github.com/kailas-cloud/daefinder/internal/domain"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

// cityRecord is the subset of a GeoLite2/GeoIP2 City entry we decode.
type cityRecord struct {
	Location struct {
		Latitude       *float64 `maxminddb:"latitude"`
		Longitude      *float64 `maxminddb:"longitude"`
		AccuracyRadius uint16   `maxminddb:"accuracy_radius"`
	} `maxminddb:"location"`
}

// lookuper is the consumer interface over *maxminddb.Reader.
type lookuper interface {
	Lookup(ip net.IP, result any) error
	Close() error
}

// GeoIP resolves a fixed IP address to coordinates with a MaxMind City database.
type GeoIP struct {
	db lookuper
	ip net.IP
}

// OpenGeoIP opens the MaxMind database at path and binds it to ip.
func OpenGeoIP(path, ip string) (*GeoIP, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("%w: invalid ip %q", domain.ErrLocationUnavailable, ip)
	}
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open geoip db %s: %w", domain.ErrLocationUnavailable, path, err)
	}
	return &GeoIP{db: r, ip: parsed}, nil
}

// Locate looks the configured IP up. Any failure reports the location as unavailable.
func (g *GeoIP) Locate(ctx context.Context) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}

	var rec cityRecord
	if err := g.db.Lookup(g.ip, &rec); err != nil {
		return geo.Point{}, fmt.Errorf("%w: lookup %s: %w", domain.ErrLocationUnavailable, g.ip, err)
	}
	if rec.Location.Latitude == nil || rec.Location.Longitude == nil {
		return geo.Point{}, fmt.Errorf("%w: no coordinates for %s", domain.ErrLocationUnavailable, g.ip)
	}

	p, err := geo.NewPoint(*rec.Location.Latitude, *rec.Location.Longitude)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", domain.ErrLocationUnavailable, err)
	}
	return p, nil
}

// HealthCheck verifies that the configured IP resolves to a position.
func (g *GeoIP) HealthCheck(ctx context.Context) error {
	_, err := g.Locate(ctx)
	return err
}

// Close releases the database.
func (g *GeoIP) Close() error {
	if g.db == nil {
		return nil
	}
	if err := g.db.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close geoip db: %w", err)
	}
	return nil
}
