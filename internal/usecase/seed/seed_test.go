package seed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/kailas-cloud/daefinder/internal/domain/device"
)

// --- Mocks ---

type mockWriter struct {
	mu       sync.Mutex
	batches  [][]device.RawDocument
	ensured  bool
	reset    bool
	failAt   int // 1-based batch index to fail, 0 = never
	ensureFn func(context.Context) error
	calls    atomic.Int32
}

func (m *mockWriter) EnsureIndex(ctx context.Context) error {
	m.ensured = true
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func (m *mockWriter) Reset(context.Context) error {
	m.reset = true
	return nil
}

func (m *mockWriter) UpsertBatch(_ context.Context, docs []device.RawDocument) error {
	n := m.calls.Add(1)
	if m.failAt > 0 && int(n) == m.failAt {
		return errors.New("write refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, docs)
	return nil
}

func docs(n int) []device.RawDocument {
	out := make([]device.RawDocument, n)
	for i := range out {
		out[i] = device.RawDocument{ID: uuid.NewString(), Fields: map[string]string{"c_nom": "x"}}
	}
	return out
}

// --- Decode ---

func TestDecode_Array(t *testing.T) {
	in := `[
		{"c_gid": "42", "c_nom": "Mairie", "c_com_cp": 75001, "c_lat_coor1": 48.8566, "c_long_coor1": 2.3522,
		 "c_disp_j": ["lundi", "mardi"], "c_adr_num": null, "c_acc_lib": true},
		{"c_nom": "Gare"}
	]`
	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d docs, want 2", len(got))
	}

	f := got[0].Fields
	for k, want := range map[string]string{
		"c_com_cp":     "75001",
		"c_lat_coor1":  "48.8566",
		"c_long_coor1": "2.3522",
		"c_disp_j":     "{lundi,mardi}",
		"c_acc_lib":    "true",
	} {
		if f[k] != want {
			t.Errorf("%s = %q, want %q", k, f[k], want)
		}
	}
	if _, ok := f["c_adr_num"]; ok {
		t.Error("null field should be dropped")
	}
	if got[0].ID != DocumentID(map[string]string{"c_gid": "42"}) {
		t.Errorf("id %s is not derived from c_gid", got[0].ID)
	}
	if _, err := uuid.Parse(got[1].ID); err != nil {
		t.Errorf("random id %q is not a uuid: %v", got[1].ID, err)
	}
}

func TestDecode_FeatureCollection(t *testing.T) {
	in := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {"c_gid": "7", "c_com_nom": "Lyon"}}
	]}`
	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Get("c_com_nom") != "Lyon" {
		t.Errorf("docs = %+v", got)
	}
}

func TestDecode_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"empty":      "",
		"scalar":     "42",
		"bad json":   "[{",
		"not object": "[1]",
		"nested obj": `[{"c_nom": {"a": 1}}]`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDocumentID_Stable(t *testing.T) {
	a := DocumentID(map[string]string{"c_gid": "123"})
	b := DocumentID(map[string]string{"c_gid": "123"})
	c := DocumentID(map[string]string{"c_gid": "124"})
	if a != b {
		t.Errorf("same gid gave %s and %s", a, b)
	}
	if a == c {
		t.Error("different gids gave the same id")
	}
	if u := uuid.MustParse(a); u.Version() != 5 {
		t.Errorf("version = %d, want 5", u.Version())
	}
}

// --- Seed ---

func TestSeed_Batches(t *testing.T) {
	w := &mockWriter{}
	svc := New(w, Config{BatchSize: 2, Concurrency: 2}, nil)

	var progressed atomic.Int64
	res, err := svc.Seed(context.Background(), docs(5), func(n int) { progressed.Add(int64(n)) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.ensured {
		t.Error("index not ensured")
	}
	if w.reset {
		t.Error("reset without Config.Reset")
	}
	if res.Written != 5 || res.Batches != 3 {
		t.Errorf("result = %+v", res)
	}
	if len(w.batches) != 3 {
		t.Errorf("batches = %d, want 3", len(w.batches))
	}
	if progressed.Load() != 5 {
		t.Errorf("progress = %d, want 5", progressed.Load())
	}
}

func TestSeed_Reset(t *testing.T) {
	w := &mockWriter{}
	if _, err := New(w, Config{Reset: true}, nil).Seed(context.Background(), nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.reset || !w.ensured {
		t.Errorf("reset=%v ensured=%v", w.reset, w.ensured)
	}
}

func TestSeed_EnsureIndexError(t *testing.T) {
	w := &mockWriter{ensureFn: func(context.Context) error { return errors.New("no search module") }}
	_, err := New(w, Config{}, nil).Seed(context.Background(), docs(1), nil)
	if err == nil || !strings.Contains(err.Error(), "ensure index") {
		t.Fatalf("err = %v", err)
	}
	if w.calls.Load() != 0 {
		t.Error("documents written without an index")
	}
}

func TestSeed_BatchError(t *testing.T) {
	w := &mockWriter{failAt: 1}
	res, err := New(w, Config{BatchSize: 1, Concurrency: 1}, nil).Seed(context.Background(), docs(3), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Written >= 3 {
		t.Errorf("written = %d, expected a partial load", res.Written)
	}
}

func TestNew_Defaults(t *testing.T) {
	svc := New(&mockWriter{}, Config{}, nil)
	if svc.cfg.BatchSize != DefaultBatchSize || svc.cfg.Concurrency != DefaultConcurrency {
		t.Errorf("cfg = %+v", svc.cfg)
	}
}
