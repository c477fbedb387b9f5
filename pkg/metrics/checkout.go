package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout attempt outcomes.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	committed *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_attempt_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_committed_total",
		Help: "Checkout attempts that produced a persisted order.",
	}, []string{"payment_method"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failed_total",
		Help: "Checkout attempts that terminated without an order, by failure kind.",
	}, []string{"payment_method", "kind"})
	reg.MustRegister(duration, committed, failed)
	return &CheckoutMetrics{
		duration:  duration,
		committed: committed,
		failed:    failed,
	}
}

// ObserveDuration records how long an attempt ran, whatever its outcome.
func (c *CheckoutMetrics) ObserveDuration(method string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncCommitted counts a committed attempt.
func (c *CheckoutMetrics) IncCommitted(method string) {
	if c == nil || c.committed == nil {
		return
	}
	c.committed.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailed counts a failed attempt by failure kind.
func (c *CheckoutMetrics) IncFailed(method, kind string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(method), normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
