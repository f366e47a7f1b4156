// Package metrics records counters and latencies for wallet operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Operation names used as the "op" label.
const (
	OpDerive      = "derive"
	OpSign        = "sign"
	OpVerify      = "verify"
	OpVaultKey    = "vault_key"
	OpGrantIssue  = "grant_issue"
	OpGrantCheck  = "grant_check"
	OpGrantRevoke = "grant_revoke"
	OpPublish     = "publish"
)

// Metrics groups the collectors registered for one process.
type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	grantChecks *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletid",
			Name:      "operations_total",
			Help:      "Wallet operations by name and result.",
		}, []string{"op", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "walletid",
			Name:      "operation_duration_seconds",
			Help:      "Latency of wallet operations.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op"}),
		grantChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletid",
			Name:      "grant_checks_total",
			Help:      "Grant checks by outcome (ok, invalid, expired, revoked).",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.operations,
		m.durations,
		m.grantChecks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for HTTP handlers and tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records one operation that started at start. A nil receiver is a
// no-op so callers can run without metrics.
func (m *Metrics) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.durations.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// GrantCheck records the outcome of a grant check.
func (m *Metrics) GrantCheck(outcome string) {
	if m == nil {
		return
	}
	m.grantChecks.WithLabelValues(outcome).Inc()
}
