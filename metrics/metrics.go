// Package metrics exposes Prometheus collectors for template rendering and
// statement execution. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Konsultn-Engineering/layman/template"
)

const namespace = "layman"

type Metrics struct {
	parseErrors *prometheus.CounterVec
	statements  *prometheus.HistogramVec
	stmtCache   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Templates rejected while rendering, by dialect and reason.",
		}, []string{"dialect", "reason"}),
		statements: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "statement_duration_seconds",
			Help:      "Time spent executing statements, by driver, operation and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"driver", "op", "status"}),
		stmtCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statement_cache_lookups_total",
			Help:      "Prepared statement cache lookups, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.parseErrors, m.statements, m.stmtCache} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ParseFailed(dialect string, err error) {
	if m == nil || err == nil {
		return
	}
	m.parseErrors.WithLabelValues(dialect, template.Reason(err)).Inc()
}

func (m *Metrics) ObserveStatement(driver, op string, took time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.statements.WithLabelValues(driver, op, status).Observe(took.Seconds())
}

func (m *Metrics) StatementCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.stmtCache.WithLabelValues(result).Inc()
}
