package telemetry

import (
	"errors"

	"github.com/openfroyo/observe/pkg/event"
)

// Observer is the event.Subscriber the adapter registers with the host's
// event system. It is the sole coupling point to the event-definition
// system: all it needs per invocation is a name, an identity, a parent
// identity, and an outcome.
//
// Each signal is routed through the guard into the correlator and the
// emitter. The emitter always runs, even when the correlator fails, because
// breadcrumbs and logs are unconditional.
type Observer struct {
	guard      *Guard
	correlator *Correlator
	emitter    *Emitter
	metrics    *Metrics
}

// NewObserver wires the adapter components behind the isolation boundary.
func NewObserver(guard *Guard, correlator *Correlator, emitter *Emitter, metrics *Metrics) *Observer {
	return &Observer{
		guard:      guard,
		correlator: correlator,
		emitter:    emitter,
		metrics:    metrics,
	}
}

// EventStarted handles an invocation start signal.
func (o *Observer) EventStarted(inv event.Invocation) error {
	o.metrics.RecordEventObserved("started")
	return o.guard.Do("event started", func() error {
		return errors.Join(
			o.correlator.EventStarted(inv),
			o.emitter.EventStarted(inv),
		)
	})
}

// EventEnded handles an invocation end signal, terminal for success and
// failure alike.
func (o *Observer) EventEnded(inv event.Invocation) error {
	phase := "succeeded"
	if inv.Failed() {
		phase = "failed"
	}
	o.metrics.RecordEventObserved(phase)

	return o.guard.Do("event ended", func() error {
		return errors.Join(
			o.correlator.EventEnded(inv),
			o.emitter.EventEnded(inv),
		)
	})
}
