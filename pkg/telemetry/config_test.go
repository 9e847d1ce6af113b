package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidatesWithDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = "https://key@ingest.example.com/42"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsOutOfRangeSampleRate(t *testing.T) {
	for _, rate := range []float64{-0.5, 1.5, 2} {
		cfg := DefaultConfig()
		cfg.DSN = "https://key@ingest.example.com/42"
		cfg.SampleRate = sampleRate(rate)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("rate %g: got %v, want ErrInvalidSampleRate", rate, err)
		}
	}
}

func TestValidateRequiresDSNForOTLP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exporter = "otlp"
	cfg.DSN = ""
	if err := cfg.Validate(); !errors.Is(err, ErrMissingDSN) {
		t.Errorf("got %v, want ErrMissingDSN", err)
	}

	cfg.Exporter = "stdout"
	if err := cfg.Validate(); err != nil {
		t.Errorf("stdout exporter should not need a DSN: %v", err)
	}
}

func TestValidateRejectsUnknownExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = "https://key@ingest.example.com/42"
	cfg.Exporter = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown exporter accepted")
	}
}

func TestLoadEnvFillsUnsetFields(t *testing.T) {
	t.Setenv(EnvDSN, "https://envkey@ingest.example.com/7")
	t.Setenv(EnvSampleRate, "0.25")

	cfg := DefaultConfig()
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}

	if cfg.DSN != "https://envkey@ingest.example.com/7" {
		t.Errorf("DSN = %q", cfg.DSN)
	}
	if cfg.SampleRate == nil || *cfg.SampleRate != 0.25 {
		t.Errorf("SampleRate = %v, want 0.25", cfg.SampleRate)
	}
}

func TestLoadEnvDoesNotOverrideExplicitValues(t *testing.T) {
	t.Setenv(EnvDSN, "https://envkey@ingest.example.com/7")
	t.Setenv(EnvSampleRate, "0.25")

	cfg := DefaultConfig()
	cfg.DSN = "https://explicit@ingest.example.com/1"
	cfg.SampleRate = sampleRate(0.75)
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}

	if cfg.DSN != "https://explicit@ingest.example.com/1" {
		t.Errorf("explicit DSN overridden: %q", cfg.DSN)
	}
	if cfg.SampleRate == nil || *cfg.SampleRate != 0.75 {
		t.Errorf("explicit sample rate overridden: %v", cfg.SampleRate)
	}
}

func TestEffectiveSampleRate(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.EffectiveSampleRate(); got != 1 {
		t.Errorf("unset rate resolves to %g, want 1", got)
	}

	cfg.SampleRate = sampleRate(0.25)
	if got := cfg.EffectiveSampleRate(); got != 0.25 {
		t.Errorf("EffectiveSampleRate() = %g, want 0.25", got)
	}

	cfg.SampleRate = sampleRate(0)
	if got := cfg.EffectiveSampleRate(); got != 0 {
		t.Errorf("explicit zero resolves to %g, want 0", got)
	}
}

func TestLoadEnvRaiseFlag(t *testing.T) {
	t.Setenv("OBSERVE_RAISE_INTERNAL_EXCEPTIONS", "true")

	cfg := DefaultConfig()
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if !cfg.RaiseInternalErrors {
		t.Error("raise flag not read from environment")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "observe.yaml")
	data := []byte(`
service_name: checkout
dsn: https://filekey@ingest.example.com/9
sample_rate: 0.5
raise_internal_exceptions: true
exporter: stdout
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.ServiceName != "checkout" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.SampleRate == nil || *cfg.SampleRate != 0.5 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
	if !cfg.RaiseInternalErrors {
		t.Error("raise flag not loaded")
	}
	if cfg.Exporter != "stdout" {
		t.Errorf("Exporter = %q", cfg.Exporter)
	}
	// Unset fields keep their defaults.
	if cfg.MaxBreadcrumbs != 100 {
		t.Errorf("MaxBreadcrumbs = %d, want default 100", cfg.MaxBreadcrumbs)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
