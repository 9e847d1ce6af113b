package telemetry

import "context"

// Status is the terminal state reported for a telemetry unit.
type Status string

const (
	// StatusOK marks a unit whose invocation completed successfully.
	StatusOK Status = "ok"

	// StatusInternalError marks a unit whose invocation failed.
	StatusInternalError Status = "internal_error"
)

// Unit is an opaque handle for one transaction or span owned by the backend.
type Unit interface {
	// UnitName returns the event name the unit was created for.
	UnitName() string
}

// Backend is the produced interface to the external ingestion service.
//
// A transaction is the root unit of one sampled trace; spans hang off it.
// Finishing a root transaction triggers submission to the transport; span
// closure is local bookkeeping until then. Implementations must be safe for
// concurrent use: the correlator drives them from whatever call stacks the
// host runs events on.
type Backend interface {
	// StartTransaction opens the root unit of a new trace.
	StartTransaction(name string) (Unit, error)

	// StartSpan opens a child unit under parent.
	StartSpan(parent Unit, name string) (Unit, error)

	// FinishUnit closes a unit with its final status. Closing a transaction
	// submits the trace.
	FinishUnit(u Unit, status Status) error

	// SetTag attaches a key/value tag to a unit.
	SetTag(u Unit, key, value string) error

	// AddBreadcrumb appends an entry to the process-wide diagnostic trail.
	AddBreadcrumb(crumb Breadcrumb) error

	// Shutdown flushes pending data and releases the transport.
	Shutdown(ctx context.Context) error
}

// noopUnit is the placeholder registered for unsampled invocations, so the
// correlator's bookkeeping stays uniform whether or not a trace is recorded.
type noopUnit struct {
	name string
}

func (n noopUnit) UnitName() string {
	return n.name
}
