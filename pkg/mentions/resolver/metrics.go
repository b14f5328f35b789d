package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the classification pipeline.
// Batch jobs collect into an in-process registry and log the totals at
// batch end; there is no long-lived scrape endpoint.
type Metrics struct {
	Processed      *prometheus.CounterVec
	OracleRequests prometheus.Counter
	Errors         prometheus.Counter
}

// NewMetrics creates and registers the pipeline counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seihyo",
				Subsystem: "resolver",
				Name:      "mentions_processed_total",
				Help:      "Mentions classified, by resulting status",
			},
			[]string{"status"},
		),
		OracleRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "seihyo",
				Subsystem: "resolver",
				Name:      "oracle_requests_total",
				Help:      "Arbitration requests sent to the judgment oracle",
			},
		),
		Errors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "seihyo",
				Subsystem: "resolver",
				Name:      "mention_errors_total",
				Help:      "Mentions whose classification failed",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Processed, m.OracleRequests, m.Errors)
	}

	return m
}

func (m *Metrics) countStatus(status string) {
	if m == nil {
		return
	}
	m.Processed.WithLabelValues(status).Inc()
}

func (m *Metrics) countError() {
	if m == nil {
		return
	}
	m.Errors.Inc()
}

func (m *Metrics) countOracleRequest() {
	if m == nil {
		return
	}
	m.OracleRequests.Inc()
}
