package telemetry

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Configuration errors. These always surface from Init regardless of
// RaiseInternalErrors: a silently misconfigured adapter would disable
// telemetry without warning.
var (
	// ErrMissingDSN is returned when no ingestion DSN is configured and the
	// selected exporter needs one.
	ErrMissingDSN = errors.New("no ingestion DSN configured")

	// ErrInvalidSampleRate is returned when the sample rate is outside [0, 1].
	ErrInvalidSampleRate = errors.New("sample rate must be between 0 and 1")
)

// Environment variables recognized by LoadEnv.
const (
	// EnvDSN carries the credentialed ingestion endpoint URL.
	EnvDSN = "SENTRY_DNS"

	// EnvSampleRate carries the trace sample rate as a float in [0, 1].
	EnvSampleRate = "SENTRY_SAMPLE_RATE"
)

// Config contains the adapter configuration.
type Config struct {
	// ServiceName identifies the instrumented service to the backend.
	ServiceName string `yaml:"service_name" validate:"required"`

	// ServiceVersion is the version of the instrumented service.
	ServiceVersion string `yaml:"service_version"`

	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment"`

	// DSN is the credentialed ingestion endpoint URL, in the form
	// scheme://publickey@host[:port]/project. Read from SENTRY_DNS when
	// empty.
	DSN string `yaml:"dsn" env:"SENTRY_DNS"`

	// SampleRate is the probability in [0, 1] that a root trace is recorded.
	// Nil means unset: LoadEnv fills it from SENTRY_SAMPLE_RATE, and
	// EffectiveSampleRate falls back to full sampling. An explicit value,
	// including 0, always wins over the environment. The decision is made once
	// per root invocation and inherited by the whole trace.
	SampleRate *float64 `yaml:"sample_rate" env:"SENTRY_SAMPLE_RATE"`

	// RaiseInternalErrors disables failure swallowing: internal telemetry
	// errors propagate to the host application instead of being logged and
	// dropped. For debugging the integration only, never for production.
	RaiseInternalErrors bool `yaml:"raise_internal_exceptions" env:"OBSERVE_RAISE_INTERNAL_EXCEPTIONS"`

	// Exporter selects the trace exporter (otlp, stdout, none).
	Exporter string `yaml:"exporter" env:"OBSERVE_EXPORTER" validate:"oneof=otlp stdout none"`

	// Insecure disables TLS on the OTLP exporter connection.
	Insecure bool `yaml:"insecure" env:"OBSERVE_INSECURE"`

	// ExportTimeout bounds a single trace export attempt.
	ExportTimeout time.Duration `yaml:"export_timeout"`

	// MaxExportBatchSize is the maximum batch size for trace export.
	MaxExportBatchSize int `yaml:"max_export_batch_size"`

	// MaxBreadcrumbs caps the process-wide breadcrumb trail. Older entries
	// are evicted first.
	MaxBreadcrumbs int `yaml:"max_breadcrumbs" validate:"gt=0"`

	// Logging configures the adapter's structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the adapter's self-health metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string `yaml:"level"`

	// Format specifies the log format (console, json).
	Format string `yaml:"format" validate:"oneof=console json"`

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string `yaml:"output"`

	// EnableCaller adds file:line caller information to log lines.
	EnableCaller bool `yaml:"enable_caller"`
}

// MetricsConfig configures the adapter's own health counters.
type MetricsConfig struct {
	// Enabled controls whether self metrics are collected.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP endpoint. Empty
	// means counters are collected but not served.
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metrics namespace prefix.
	Namespace string `yaml:"namespace"`
}

// DefaultConfig returns the default adapter configuration: full sampling,
// OTLP export, errors swallowed.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:         "observe",
		ServiceVersion:      "dev",
		Environment:         "development",
		RaiseInternalErrors: false,
		Exporter:            "otlp",
		ExportTimeout:       30 * time.Second,
		MaxExportBatchSize:  512,
		MaxBreadcrumbs:      100,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "observe",
		},
	}
}

// LoadEnv fills unset fields from the environment (SENTRY_DNS,
// SENTRY_SAMPLE_RATE and the OBSERVE_* variables). Values already set on the
// config win over the environment.
func (c *Config) LoadEnv() error {
	overlay := Config{}
	if err := env.Parse(&overlay); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if c.DSN == "" {
		c.DSN = overlay.DSN
	}
	if c.SampleRate == nil {
		c.SampleRate = overlay.SampleRate
	}
	if !c.RaiseInternalErrors {
		c.RaiseInternalErrors = overlay.RaiseInternalErrors
	}
	if os.Getenv("OBSERVE_EXPORTER") != "" {
		c.Exporter = overlay.Exporter
	}
	if overlay.Insecure {
		c.Insecure = true
	}
	return nil
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration. All validation failures are
// configuration errors and surface from Init unconditionally.
func (c *Config) Validate() error {
	if c.SampleRate != nil && (*c.SampleRate < 0 || *c.SampleRate > 1) {
		return fmt.Errorf("%w, got %g", ErrInvalidSampleRate, *c.SampleRate)
	}

	if c.Exporter == "otlp" && c.DSN == "" {
		return fmt.Errorf("%w (set %s or Config.DSN)", ErrMissingDSN, EnvDSN)
	}

	if c.DSN != "" {
		if _, err := ParseDSN(c.DSN); err != nil {
			return err
		}
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EffectiveSampleRate resolves the configured rate, defaulting to full
// sampling when neither the caller nor the environment set one.
func (c *Config) EffectiveSampleRate() float64 {
	if c.SampleRate == nil {
		return 1.0
	}
	return *c.SampleRate
}
