// Package metrics exposes the Prometheus collectors of the loform service.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
)

const namespace = "loform"

// Recorder owns a registry and the collectors fed by the option provider,
// the resolver and the session stores.
type Recorder struct {
	registry *prometheus.Registry

	optionLoads    *prometheus.CounterVec
	optionDuration *prometheus.HistogramVec
	schemaErrors   *prometheus.CounterVec
	snapshots      *prometheus.CounterVec
	sessions       prometheus.Gauge
}

// New creates a Recorder with its own registry, including the Go runtime and
// process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		optionLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "option_loads_total",
			Help:      "Reference option lookups by source and outcome.",
		}, []string{"source", "outcome"}),
		optionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "option_load_duration_seconds",
			Help:      "Latency of reference option lookups.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		schemaErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_load_errors_total",
			Help:      "Schema documents that could not be located or parsed.",
		}, []string{"reason"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_emitted_total",
			Help:      "Debounced record snapshots delivered to consumers.",
		}, []string{"object_type"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open editing sessions.",
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.optionLoads,
		r.optionDuration,
		r.schemaErrors,
		r.snapshots,
		r.sessions,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveOptionLoad matches options.LoadHook.
func (r *Recorder) ObserveOptionLoad(source options.Source, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.optionLoads.WithLabelValues(string(source), outcome).Inc()
	r.optionDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
}

// ObserveSchemaError counts a schema load failure by cause.
func (r *Recorder) ObserveSchemaError(err *schema.LoadError) {
	reason := "other"
	switch {
	case errors.Is(err, schema.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, schema.ErrMalformed):
		reason = "malformed"
	case errors.Is(err, schema.ErrCycle):
		reason = "cycle"
	}
	r.schemaErrors.WithLabelValues(reason).Inc()
}

// ObserveSnapshot counts a delivered snapshot.
func (r *Recorder) ObserveSnapshot(objectType string) {
	r.snapshots.WithLabelValues(objectType).Inc()
}

// SessionOpened increments the active session gauge.
func (r *Recorder) SessionOpened() {
	r.sessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (r *Recorder) SessionClosed() {
	r.sessions.Dec()
}
