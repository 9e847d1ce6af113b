package telemetry

import (
	"fmt"
)

// Guard is the failure isolation boundary around every telemetry operation.
//
// By default any error or panic raised inside the adapter is logged at error
// level and swallowed, so the host application's event execution proceeds
// unaffected. With raise enabled the failure propagates to the caller
// instead; that mode is for debugging the integration itself.
type Guard struct {
	raise   bool
	logger  *Logger
	metrics *Metrics
}

// NewGuard creates a guard. raise disables swallowing.
func NewGuard(raise bool, logger *Logger, metrics *Metrics) *Guard {
	return &Guard{
		raise:   raise,
		logger:  logger.NewComponentLogger("guard"),
		metrics: metrics,
	}
}

// Do runs a telemetry operation inside the isolation boundary.
func (g *Guard) Do(op string, fn func() error) error {
	err := g.capture(op, fn)
	if err == nil {
		return nil
	}

	g.metrics.RecordInternalFailure(op)
	if g.raise {
		return err
	}

	g.logger.WithError(err).Errorf("internal telemetry operation failed: %s", op)
	return nil
}

// capture runs fn, converting panics into errors so a telemetry defect can
// never unwind the host's stack.
func (g *Guard) capture(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in telemetry operation %s: %v", op, r)
		}
	}()
	return fn()
}
