// Package metrics exposes Prometheus collectors for renders, fallbacks,
// validation failures, action outcomes and session runtime figures.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "jsonrender"

// Action outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeHandled   = "handled"
	OutcomeDeclined  = "declined"
)

// Collector owns a private registry so several sessions or tests never
// collide on the global one. All methods are safe on a nil receiver.
type Collector struct {
	registry           *prometheus.Registry
	renders            prometheus.Counter
	fallbacks          *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	actions            *prometheus.CounterVec
	actionDuration     *prometheus.HistogramVec
	runtime            *runtimeCollector
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of tree render passes.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "element_fallbacks_total",
			Help:      "Elements rendered with the fallback, by element type.",
		}, []string{"type"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Catalog validation failures, by subject (element, tree, action).",
		}, []string{"subject"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Action invocations, by action name and outcome.",
		}, []string{"action", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Duration of action handler calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		runtime: newRuntimeCollector(),
	}
	c.registry.MustRegister(c.renders, c.fallbacks, c.validationFailures, c.actions, c.actionDuration, c.runtime)
	return c
}

// Registry returns the underlying registry, e.g. for promhttp.HandlerFor.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveRender counts one render pass.
func (c *Collector) ObserveRender() {
	if c == nil {
		return
	}
	c.renders.Inc()
}

// ObserveFallback counts an element rendered with the fallback.
func (c *Collector) ObserveFallback(elementType string) {
	if c == nil {
		return
	}
	c.fallbacks.WithLabelValues(elementType).Inc()
}

// ObserveValidationFailure counts a failed catalog validation.
func (c *Collector) ObserveValidationFailure(subject string) {
	if c == nil {
		return
	}
	c.validationFailures.WithLabelValues(subject).Inc()
}

// ObserveAction records the outcome and handler duration of one invocation.
func (c *Collector) ObserveAction(action, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.actions.WithLabelValues(action, outcome).Inc()
	if d > 0 {
		c.actionDuration.WithLabelValues(action).Observe(d.Seconds())
	}
}

// WriteText writes every metric family in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	if c == nil {
		return nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
