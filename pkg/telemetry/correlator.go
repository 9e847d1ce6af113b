package telemetry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/openfroyo/observe/pkg/event"
)

// ErrLostCorrelation is returned when an end signal arrives for an
// invocation with no registered unit: a missed start, or correlation lost
// across an asynchronous boundary. The span is lost; no unit is created
// retroactively.
var ErrLostCorrelation = errors.New("no active unit for invocation")

// Correlator maintains the mapping from in-flight invocations to their
// telemetry units and threads parent/child relationships through nested
// invocations.
//
// Roots selected by the sampler become transactions; nested invocations
// become spans under their parent's unit. Unsampled roots get a no-op
// placeholder, and the whole subtree inherits that decision — sampling is
// all-or-nothing per trace, decided once. Entries are keyed by invocation
// identity, so concurrent traces on independent call stacks never
// cross-contaminate.
type Correlator struct {
	backend Backend
	sampler *Sampler
	logger  *Logger
	metrics *Metrics

	mu   sync.Mutex
	live map[uuid.UUID]*traceEntry
}

// traceEntry tracks one in-flight invocation.
type traceEntry struct {
	unit    Unit
	sampled bool

	// root is the invocation ID of the trace's root, used to orphan the
	// remaining subtree when the root closes early.
	root uuid.UUID

	// orphaned is set when the enclosing transaction was already submitted;
	// the unit is discarded on end instead of finished.
	orphaned bool

	// calls counts invocations per event name within the trace, reported as
	// tags on the root unit ("<name> calls").
	calls map[string]int
}

// NewCorrelator creates a correlator submitting units to the given backend.
func NewCorrelator(backend Backend, sampler *Sampler, logger *Logger, metrics *Metrics) *Correlator {
	return &Correlator{
		backend: backend,
		sampler: sampler,
		logger:  logger.NewComponentLogger("correlator"),
		metrics: metrics,
		live:    make(map[uuid.UUID]*traceEntry),
	}
}

// EventStarted registers a unit for the invocation: a transaction for a
// sampled root, a child span under the parent's unit, or a no-op placeholder
// when the trace is unsampled or the parent is unknown.
func (c *Correlator) EventStarted(inv event.Invocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.live[inv.ID]; ok {
		c.logger.WithEvent(inv.Name).Warn("duplicate start signal ignored")
		return nil
	}

	entry := &traceEntry{root: inv.ID, calls: make(map[string]int)}

	switch {
	case inv.Root():
		entry.sampled = c.sampler.Decide(inv.Name)
		if entry.sampled {
			c.metrics.RecordTraceSampled()
			unit, err := c.backend.StartTransaction(inv.Name)
			if err != nil {
				return fmt.Errorf("failed to start transaction for %s: %w", inv.Name, err)
			}
			entry.unit = unit
		} else {
			entry.unit = noopUnit{name: inv.Name}
		}

	default:
		parent, ok := c.live[inv.Parent]
		if !ok {
			// Correlation lost between parent and child; trace the
			// invocation as its own unsampled root rather than guessing a
			// parent.
			c.logger.WithEvent(inv.Name).Warn("no active parent for nested invocation")
			entry.sampled = false
			entry.unit = noopUnit{name: inv.Name}
			break
		}

		entry.root = parent.root
		entry.sampled = parent.sampled
		if root, ok := c.live[parent.root]; ok {
			root.calls[inv.Name]++
		}
		if parent.sampled {
			unit, err := c.backend.StartSpan(parent.unit, inv.Name)
			if err != nil {
				return fmt.Errorf("failed to start span for %s: %w", inv.Name, err)
			}
			entry.unit = unit
		} else {
			entry.unit = noopUnit{name: inv.Name}
		}
	}

	c.live[inv.ID] = entry
	return nil
}

// EventEnded closes the invocation's unit with the status mapped from its
// outcome and removes the registration. Closing a root transaction triggers
// submission; any descendants still live at that point are orphaned and will
// be dropped with a warning when their own end signal arrives.
func (c *Correlator) EventEnded(inv event.Invocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.live[inv.ID]
	if !ok {
		c.metrics.RecordLostSpan()
		c.logger.WithEvent(inv.Name).Warn("end signal without matching start, span lost")
		return fmt.Errorf("%w: %s", ErrLostCorrelation, inv.Name)
	}
	delete(c.live, inv.ID)

	if entry.orphaned {
		c.metrics.RecordOrphanedSpan()
		c.logger.WithEvent(inv.Name).Warn("enclosing transaction already submitted, dropping span")
		return nil
	}

	closingRoot := inv.ID == entry.root
	if closingRoot {
		for _, descendant := range c.live {
			if descendant.root == entry.root {
				descendant.orphaned = true
			}
		}
	}

	if !entry.sampled {
		return nil
	}

	status := StatusOK
	if inv.Failed() {
		status = StatusInternalError
	}

	if closingRoot {
		for name, count := range entry.calls {
			if err := c.backend.SetTag(entry.unit, fmt.Sprintf("%s calls", name), fmt.Sprintf("%d", count)); err != nil {
				return fmt.Errorf("failed to tag transaction for %s: %w", inv.Name, err)
			}
		}
	}

	if err := c.backend.FinishUnit(entry.unit, status); err != nil {
		return fmt.Errorf("failed to finish unit for %s: %w", inv.Name, err)
	}
	return nil
}

// Live returns the number of in-flight registrations. An invocation that
// never signals completion leaks its entry for the process lifetime; this
// counter is how operators notice.
func (c *Correlator) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}
