package geolocation

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/kailas-cloud/daefinder/internal/config"
	"github.com/kailas-cloud/daefinder/internal/domain"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
)

func TestStatic(t *testing.T) {
	s, err := NewStatic(48.8566, 2.3522)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := s.Locate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != (geo.Point{Latitude: 48.8566, Longitude: 2.3522}) {
		t.Errorf("point = %v", p)
	}
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}

func TestStatic_Invalid(t *testing.T) {
	if _, err := NewStatic(95, 0); !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestStatic_CanceledContext(t *testing.T) {
	s, _ := NewStatic(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Locate(ctx); !errors.Is(err, domain.ErrLocationUnavailable) {
		t.Fatalf("expected ErrLocationUnavailable, got %v", err)
	}
}

// fakeDB fills cityRecord through the same struct the MaxMind decoder targets.
type fakeDB struct {
	lat, lon *float64
	err      error
	closed   bool
}

func (f *fakeDB) Lookup(_ net.IP, result any) error {
	if f.err != nil {
		return f.err
	}
	rec := result.(*cityRecord)
	rec.Location.Latitude = f.lat
	rec.Location.Longitude = f.lon
	return nil
}

func (f *fakeDB) Close() error {
	f.closed = true
	return nil
}

func ptr(v float64) *float64 { return &v }

func TestGeoIP_Locate(t *testing.T) {
	tests := []struct {
		name    string
		db      *fakeDB
		want    geo.Point
		wantErr bool
	}{
		{"found", &fakeDB{lat: ptr(45.764), lon: ptr(4.8357)}, geo.Point{Latitude: 45.764, Longitude: 4.8357}, false},
		{"no location", &fakeDB{}, geo.Point{}, true},
		{"lookup error", &fakeDB{err: errors.New("corrupt")}, geo.Point{}, true},
		{"out of range", &fakeDB{lat: ptr(200), lon: ptr(0)}, geo.Point{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := &GeoIP{db: tc.db, ip: net.ParseIP("192.0.2.1")}
			p, err := g.Locate(context.Background())
			if tc.wantErr {
				if !errors.Is(err, domain.ErrLocationUnavailable) {
					t.Fatalf("expected ErrLocationUnavailable, got %v", err)
				}
				if g.HealthCheck(context.Background()) == nil {
					t.Error("health check should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != tc.want {
				t.Errorf("point = %v, want %v", p, tc.want)
			}
		})
	}
}

func TestGeoIP_Close(t *testing.T) {
	db := &fakeDB{}
	g := &GeoIP{db: db}
	if err := g.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !db.closed {
		t.Error("database not closed")
	}
}

func TestOpenGeoIP_Errors(t *testing.T) {
	if _, err := OpenGeoIP("/nonexistent.mmdb", "not-an-ip"); !errors.Is(err, domain.ErrLocationUnavailable) {
		t.Errorf("invalid ip: expected ErrLocationUnavailable, got %v", err)
	}
	if _, err := OpenGeoIP("/nonexistent.mmdb", "192.0.2.1"); !errors.Is(err, domain.ErrLocationUnavailable) {
		t.Errorf("missing database: expected ErrLocationUnavailable, got %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.GeolocationConfig
		wantAvail bool
	}{
		{"static", config.GeolocationConfig{Provider: config.ProviderStatic, Latitude: 45.764, Longitude: 4.8357}, true},
		{"default is static", config.GeolocationConfig{Latitude: 1, Longitude: 2}, true},
		{"static out of range", config.GeolocationConfig{Provider: config.ProviderStatic, Latitude: 95}, false},
		{"geoip missing db", config.GeolocationConfig{Provider: config.ProviderGeoIP, GeoIPDB: "/nonexistent.mmdb", IP: "192.0.2.1"}, false},
		{"geoip bad ip", config.GeolocationConfig{Provider: config.ProviderGeoIP, GeoIPDB: "/nonexistent.mmdb", IP: "nope"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("New returned nil")
			}
			defer func() { _ = p.Close() }()

			_, locErr := p.Locate(context.Background())
			healthErr := p.HealthCheck(context.Background())
			if tt.wantAvail {
				if locErr != nil || healthErr != nil {
					t.Fatalf("locate = %v, health = %v", locErr, healthErr)
				}
				return
			}
			if !errors.Is(locErr, domain.ErrLocationUnavailable) {
				t.Errorf("locate: expected ErrLocationUnavailable, got %v", locErr)
			}
			if !errors.Is(healthErr, domain.ErrLocationUnavailable) {
				t.Errorf("health: expected ErrLocationUnavailable, got %v", healthErr)
			}
		})
	}
}

func TestNewUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("boom")
	u := NewUnavailable(cause)
	_, err := u.Locate(context.Background())
	if !errors.Is(err, cause) || !errors.Is(err, domain.ErrLocationUnavailable) {
		t.Errorf("err = %v", err)
	}
	if _, err := NewUnavailable(nil).Locate(context.Background()); !errors.Is(err, domain.ErrLocationUnavailable) {
		t.Errorf("nil cause: err = %v", err)
	}
}
