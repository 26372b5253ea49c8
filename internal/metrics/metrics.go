package metrics

import (
	"context"

	"github.com/latoulicious/Reactor/pkg/reactor"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reactor"

// Collector turns engine activities into Prometheus counters
type Collector struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	applied    *prometheus.CounterVec
	removed    *prometheus.CounterVec
	failed     *prometheus.CounterVec
	armed      prometheus.Gauge
}

// NewCollector creates a collector registered on its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations, by operation name.",
		}, []string{"operation"}),
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reactions_applied_total",
			Help:      "Reactions added by the bot.",
		}, []string{"operation"}),
		removed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reactions_removed_total",
			Help:      "Reactions removed by the bot.",
		}, []string{"operation"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaction_failures_total",
			Help:      "Reaction add or remove calls that failed.",
		}, []string{"operation"}),
		armed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_armed",
			Help:      "1 while a live session is armed.",
		}),
	}

	c.registry.MustRegister(c.operations, c.applied, c.removed, c.failed, c.armed)
	return c
}

// Registry exposes the collector's registry for the HTTP handler
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe implements reactor.Observer
func (c *Collector) Observe(_ context.Context, a reactor.Activity) {
	c.operations.WithLabelValues(a.Operation).Inc()
	if a.Applied > 0 {
		c.applied.WithLabelValues(a.Operation).Add(float64(a.Applied))
	}
	if a.Removed > 0 {
		c.removed.WithLabelValues(a.Operation).Add(float64(a.Removed))
	}
	if a.Failed > 0 {
		c.failed.WithLabelValues(a.Operation).Add(float64(a.Failed))
	}
}

// SessionChanged implements reactor.StateListener
func (c *Collector) SessionChanged(s reactor.Snapshot) {
	if s.State == reactor.Armed {
		c.armed.Set(1)
		return
	}
	c.armed.Set(0)
}
