package fetch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/domain/geo"
	"github.com/kailas-cloud/daefinder/internal/domain/query"
)

type result struct {
	docs []device.RawDocument
	err  error
}

// gatedRepo blocks every Query until the test releases the matching descriptor.
type gatedRepo struct {
	mu      sync.Mutex
	gates   map[string]chan result
	queries []string
}

func newGatedRepo() *gatedRepo {
	return &gatedRepo{gates: make(map[string]chan result)}
}

func (r *gatedRepo) gate(key string) chan result {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.gates[key]
	if !ok {
		ch = make(chan result, 1)
		r.gates[key] = ch
	}
	return ch
}

func (r *gatedRepo) Query(ctx context.Context, d query.Descriptor) ([]device.RawDocument, error) {
	key := d.String()
	r.mu.Lock()
	r.queries = append(r.queries, key)
	r.mu.Unlock()

	select {
	case res := <-r.gate(key):
		return res.docs, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *gatedRepo) release(d query.Descriptor, docs []device.RawDocument, err error) {
	r.gate(d.String()) <- result{docs: docs, err: err}
}

func (r *gatedRepo) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

// stubRepo answers immediately.
type stubRepo struct {
	docs []device.RawDocument
	err  error
}

func (r *stubRepo) Query(context.Context, query.Descriptor) ([]device.RawDocument, error) {
	return r.docs, r.err
}

// stubLocator answers with a fixed point or error, optionally after a gate opens.
type stubLocator struct {
	point geo.Point
	err   error
	gate  chan struct{}
}

func (l *stubLocator) Locate(ctx context.Context) (geo.Point, error) {
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			return geo.Point{}, ctx.Err()
		}
	}
	return l.point, l.err
}

// stateRecorder collects observer snapshots.
type stateRecorder struct {
	ch chan State
}

func newStateRecorder() *stateRecorder {
	return &stateRecorder{ch: make(chan State, 64)}
}

func (r *stateRecorder) observe(s State) { r.ch <- s }

// waitFor returns the first snapshot with the given status and token.
func (r *stateRecorder) waitFor(t *testing.T, status Status, tok Token) State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-r.ch:
			if s.Status == status && s.Token == tok {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s with token %d", status, tok)
			return State{}
		}
	}
}

func rawDevice(id, city, lat, lon string) device.RawDocument {
	return device.RawDocument{ID: id, Fields: map[string]string{
		device.FieldGID:        "GID-" + id,
		device.FieldName:       "Mairie " + city,
		device.FieldStatus:     device.WireOperational,
		device.FieldLatitude:   lat,
		device.FieldLongitude:  lon,
		device.FieldPostalCode: "75001",
		device.FieldCity:       city,
	}}
}

func recordIDs(recs []device.Record) []string {
	out := make([]string, len(recs))
	for i := range recs {
		out[i] = recs[i].ID()
	}
	return out
}
