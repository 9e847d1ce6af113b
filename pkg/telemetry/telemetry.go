package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openfroyo/observe/pkg/event"
)

// ErrAlreadyInitialized is returned when Init is called on a handle that is
// already wired to a backend.
var ErrAlreadyInitialized = errors.New("telemetry already initialized")

// Telemetry is the process-scoped adapter handle: sampler, correlator,
// emitter, and guard wired around one backend transport. Create it once with
// Init, attach it to the host's event source, and shut it down on exit.
type Telemetry struct {
	Logger  *Logger
	Sampler *Sampler
	Metrics *Metrics

	observer   *Observer
	correlator *Correlator
	backend    Backend
	trail      *Trail
	config     *Config
	cancels    []func()
}

// Option customizes Init.
type Option func(*initOptions)

type initOptions struct {
	backend Backend
}

// WithBackend substitutes the backend transport. Used to inject fakes in
// tests; production callers let Init build the exporter from the config.
func WithBackend(b Backend) Option {
	return func(o *initOptions) {
		o.backend = b
	}
}

// Init validates the configuration and wires the adapter.
//
// Missing values are read from the environment (SENTRY_DNS,
// SENTRY_SAMPLE_RATE). Configuration errors — absent DSN, sample rate
// outside [0, 1] — are always returned, regardless of RaiseInternalErrors:
// silent misconfiguration would disable telemetry without warning. No event
// processing happens before validation passes.
func Init(cfg *Config, opts ...Option) (*Telemetry, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var options initOptions
	for _, opt := range opts {
		opt(&options)
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	if options.backend != nil && cfg.DSN == "" {
		// An injected backend needs no transport credentials.
		cfg.Exporter = "none"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	trail := NewTrail(cfg.MaxBreadcrumbs)
	metrics := NewMetrics(cfg.Metrics)

	backend := options.backend
	if backend == nil {
		backend, err = newOTelBackend(cfg, logger, trail)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend: %w", err)
		}
	}

	sampler, err := NewSampler(cfg.EffectiveSampleRate())
	if err != nil {
		return nil, err
	}

	correlator := NewCorrelator(backend, sampler, logger, metrics)
	emitter := NewEmitter(logger, backend)
	guard := NewGuard(cfg.RaiseInternalErrors, logger, metrics)

	return &Telemetry{
		Logger:     logger,
		Sampler:    sampler,
		Metrics:    metrics,
		observer:   NewObserver(guard, correlator, emitter, metrics),
		correlator: correlator,
		backend:    backend,
		trail:      trail,
		config:     cfg,
	}, nil
}

// Observer returns the event.Subscriber to register with the host's event
// system.
func (t *Telemetry) Observer() *Observer {
	return t.observer
}

// Attach subscribes the adapter to an event source. The subscription is
// cancelled on Shutdown.
func (t *Telemetry) Attach(src event.Source) {
	t.cancels = append(t.cancels, src.Subscribe(t.observer))
}

// Breadcrumbs returns a copy of the current diagnostic trail, oldest first.
func (t *Telemetry) Breadcrumbs() []Breadcrumb {
	return t.trail.Snapshot()
}

// LiveInvocations reports in-flight registrations; a steadily growing value
// means some host event never signals completion.
func (t *Telemetry) LiveInvocations() int {
	return t.correlator.Live()
}

// Flush forces pending telemetry out to the transport.
func (t *Telemetry) Flush(ctx context.Context) error {
	if f, ok := t.backend.(interface{ ForceFlush(context.Context) error }); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

// Shutdown cancels subscriptions, flushes, and releases the transport. A
// handle registered as the process default is deregistered so the process
// can initialize again.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	for _, cancel := range t.cancels {
		cancel()
	}
	t.cancels = nil

	defaultMu.Lock()
	if defaultTel == t {
		defaultTel = nil
	}
	defaultMu.Unlock()

	return t.backend.Shutdown(ctx)
}

// StartMetricsServer starts the self-metrics endpoint when configured.
func (t *Telemetry) StartMetricsServer() error {
	return t.Metrics.StartMetricsServer()
}

var (
	defaultMu  sync.Mutex
	defaultTel *Telemetry
)

// InitDefault initializes the process-wide default handle. The backend
// transport is expensive and singular, so a second initialization is
// rejected: an error when RaiseInternalErrors is set, otherwise a warning
// and the existing handle.
func InitDefault(cfg *Config, opts ...Option) (*Telemetry, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultTel != nil {
		if cfg != nil && cfg.RaiseInternalErrors {
			return nil, ErrAlreadyInitialized
		}
		defaultTel.Logger.Warn("telemetry already initialized, ignoring new initialization")
		return defaultTel, nil
	}

	tel, err := Init(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defaultTel = tel
	return tel, nil
}

// Default returns the process-wide handle, or nil before InitDefault.
func Default() *Telemetry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultTel
}
