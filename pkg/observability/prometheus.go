package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector keeps workflow metrics in a private Prometheus registry
type Collector struct {
	registry *prometheus.Registry

	outcomes  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewCollector creates a collector; namespace prefixes every metric name
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_outcomes_total",
			Help:      "Workflow invocations by result status",
		},
		[]string{"workflow", "status"},
	)

	durations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "Workflow invocation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"workflow"},
	)

	registry.MustRegister(outcomes, durations)

	return &Collector{
		registry:  registry,
		outcomes:  outcomes,
		durations: durations,
	}
}

func (c *Collector) RecordOutcome(_ context.Context, workflow, status string) {
	c.outcomes.WithLabelValues(workflow, status).Inc()
}

func (c *Collector) RecordDuration(_ context.Context, workflow string, d time.Duration) {
	c.durations.WithLabelValues(workflow).Observe(d.Seconds())
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
