package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides the adapter's own Prometheus health counters. These track
// the adapter, not the host application: how many lifecycle signals were
// observed, how often sampling fired, and how often telemetry itself failed.
type Metrics struct {
	config MetricsConfig

	eventsObserved   *prometheus.CounterVec
	tracesSampled    prometheus.Counter
	spansLost        prometheus.Counter
	spansOrphaned    prometheus.Counter
	internalFailures *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector. A disabled config yields a no-op
// instance.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{config: cfg}
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		eventsObserved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_observed_total",
				Help:      "Total number of event lifecycle signals observed",
			},
			[]string{"phase"},
		),
		tracesSampled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "traces_sampled_total",
				Help:      "Total number of root traces selected by the sampler",
			},
		),
		spansLost: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spans_lost_total",
				Help:      "Total number of end signals with no matching start",
			},
		),
		spansOrphaned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spans_orphaned_total",
				Help:      "Total number of spans dropped because their transaction already closed",
			},
		),
		internalFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "internal_failures_total",
				Help:      "Total number of swallowed or raised internal telemetry failures",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.eventsObserved,
		m.tracesSampled,
		m.spansLost,
		m.spansOrphaned,
		m.internalFailures,
	)

	return m
}

// RecordEventObserved counts a lifecycle signal by phase (started,
// succeeded, failed).
func (m *Metrics) RecordEventObserved(phase string) {
	if m.eventsObserved != nil {
		m.eventsObserved.WithLabelValues(phase).Inc()
	}
}

// RecordTraceSampled counts a root trace selected by the sampler.
func (m *Metrics) RecordTraceSampled() {
	if m.tracesSampled != nil {
		m.tracesSampled.Inc()
	}
}

// RecordLostSpan counts an end signal that arrived without a matching start.
func (m *Metrics) RecordLostSpan() {
	if m.spansLost != nil {
		m.spansLost.Inc()
	}
}

// RecordOrphanedSpan counts a span discarded because its enclosing
// transaction had already been submitted.
func (m *Metrics) RecordOrphanedSpan() {
	if m.spansOrphaned != nil {
		m.spansOrphaned.Inc()
	}
}

// RecordInternalFailure counts a failure inside the named telemetry
// operation.
func (m *Metrics) RecordInternalFailure(operation string) {
	if m.internalFailures != nil {
		m.internalFailures.WithLabelValues(operation).Inc()
	}
}

// StartMetricsServer starts the metrics HTTP endpoint when a listen address
// is configured. Non-blocking.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled || m.config.ListenAddress == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Registry exposes the underlying registry for embedding into a host's
// metrics setup. Nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
