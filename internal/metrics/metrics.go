// Package metrics counts the work done by a report run and writes the
// counters in the Prometheus text format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "processing"

// Access key lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Metrics holds the counters of one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// Documents counts documents read from the catalog.
	Documents prometheus.Counter

	// Rows counts rows written to the sink.
	Rows prometheus.Counter

	// AccessKeys counts access lookups by result.
	AccessKeys *prometheus.CounterVec

	// UpstreamFailures counts documents and journals abandoned after a failure.
	UpstreamFailures prometheus.Counter
}

// New registers a fresh set of counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Documents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_total",
			Help:      "Documents read from the catalog.",
		}),
		Rows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rows_total",
			Help:      "Rows written to the report output.",
		}),
		AccessKeys: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "access_keys_total",
			Help:      "Access keys looked up, by result.",
		}, []string{"result"}),
		UpstreamFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "upstream_failures_total",
			Help:      "Documents and journals abandoned after a failure.",
		}),
	}
}

// Registry exposes the registry the counters live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// KeyLookup records the result of one access key lookup.
func (m *Metrics) KeyLookup(found bool) {
	result := ResultMiss
	if found {
		result = ResultHit
	}
	m.AccessKeys.WithLabelValues(result).Inc()
}

// WriteFile writes the counters to path in the Prometheus text format.
// An empty path is a no-op.
func (m *Metrics) WriteFile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
