package telemetry

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Sampler decides, once per root invocation, whether a trace is recorded.
//
// A root is sampled when a uniform draw u in [0, 1) falls below the
// configured rate: rate 0 never samples, rate 1 always does. Nested
// invocations never consult the sampler; the root's decision is inherited by
// the whole trace through the correlator.
type Sampler struct {
	mu        sync.Mutex
	rate      float64
	randFloat func() float64
}

// NewSampler creates a sampler with the given rate. The rate must be in
// [0, 1].
func NewSampler(rate float64) (*Sampler, error) {
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("%w, got %g", ErrInvalidSampleRate, rate)
	}
	return &Sampler{rate: rate, randFloat: rand.Float64}, nil
}

// Decide returns whether the trace rooted at the named invocation is
// recorded. Called exactly once per root.
func (s *Sampler) Decide(rootName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.randFloat() < s.rate
}

// Rate returns the current sample rate.
func (s *Sampler) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetRate swaps the sample rate at runtime (config hot reload). Traces
// already in flight keep their original decision.
func (s *Sampler) SetRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("%w, got %g", ErrInvalidSampleRate, rate)
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}
