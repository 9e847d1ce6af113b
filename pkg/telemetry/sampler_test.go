package telemetry

import (
	"errors"
	"testing"
)

func TestNewSamplerRejectsOutOfRangeRates(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		ok   bool
	}{
		{"zero", 0, true},
		{"one", 1, true},
		{"half", 0.5, true},
		{"negative", -0.1, false},
		{"above one", 1.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSampler(tt.rate)
			if tt.ok && err != nil {
				t.Errorf("NewSampler(%g) = %v, want nil", tt.rate, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSampleRate) {
				t.Errorf("NewSampler(%g) = %v, want ErrInvalidSampleRate", tt.rate, err)
			}
		})
	}
}

func TestSamplerRateZeroNeverSamples(t *testing.T) {
	s := testSampler(t, 0)
	for i := 0; i < 1000; i++ {
		if s.Decide("root") {
			t.Fatal("rate 0 sampled a trace")
		}
	}
}

func TestSamplerRateOneAlwaysSamples(t *testing.T) {
	s := testSampler(t, 1)
	for i := 0; i < 1000; i++ {
		if !s.Decide("root") {
			t.Fatal("rate 1 skipped a trace")
		}
	}
}

func TestSamplerThresholdBoundary(t *testing.T) {
	s := testSampler(t, 0.5)

	draws := []float64{0.0, 0.25, 0.4999, 0.5, 0.75, 0.9999}
	want := []bool{true, true, true, false, false, false}

	i := 0
	s.randFloat = func() float64 {
		v := draws[i]
		i++
		return v
	}

	for j, expect := range want {
		if got := s.Decide("root"); got != expect {
			t.Errorf("draw %g: sampled = %v, want %v", draws[j], got, expect)
		}
	}
}

func TestSamplerSetRate(t *testing.T) {
	s := testSampler(t, 0)

	if err := s.SetRate(1); err != nil {
		t.Fatalf("SetRate(1): %v", err)
	}
	if !s.Decide("root") {
		t.Error("rate not applied")
	}
	if s.Rate() != 1 {
		t.Errorf("Rate() = %g, want 1", s.Rate())
	}

	if err := s.SetRate(2); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("SetRate(2) = %v, want ErrInvalidSampleRate", err)
	}
	if s.Rate() != 1 {
		t.Error("rejected rate was applied")
	}
}
