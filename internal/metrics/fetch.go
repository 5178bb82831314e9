package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcome label values.
const (
	OutcomeDone    = "done"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// Fetch and seed Prometheus metrics.
var (
	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daefinder",
			Name:      "fetch_requests_total",
			Help:      "Settled fetch requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "daefinder",
			Name:      "fetch_duration_seconds",
			Help:      "Time from issuing a fetch to its settlement",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	RecordsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daefinder",
			Name:      "records_rejected_total",
			Help:      "Malformed device records dropped during normalization",
		},
		[]string{"kind"},
	)

	SeedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daefinder",
			Name:      "seed_documents_total",
			Help:      "Documents processed by the seeder",
		},
		[]string{"status"}, // "written" / "failed"
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(FetchRequestsTotal)
		prometheus.MustRegister(FetchDuration)
		prometheus.MustRegister(RecordsRejectedTotal)
		prometheus.MustRegister(SeedDocumentsTotal)
	})
}
