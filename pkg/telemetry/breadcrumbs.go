package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/openfroyo/observe/pkg/event"
)

// Level is the severity of a breadcrumb or log line.
type Level string

const (
	// LevelInfo marks routine lifecycle entries.
	LevelInfo Level = "info"

	// LevelError marks failure entries.
	LevelError Level = "error"
)

// Breadcrumb is one immutable entry in the diagnostic trail attached to
// later error reports.
type Breadcrumb struct {
	// Message is the human-readable entry text.
	Message string

	// Category is the event name the entry belongs to.
	Category string

	// Level is the entry severity.
	Level Level

	// Timestamp is when the entry was recorded.
	Timestamp time.Time
}

// Trail is the process-wide ordered breadcrumb buffer, capped at a fixed
// retention: when full, the oldest entry is evicted. Entries are never
// mutated after being added.
type Trail struct {
	mu     sync.Mutex
	max    int
	crumbs []Breadcrumb
}

// NewTrail creates a trail retaining at most max entries.
func NewTrail(max int) *Trail {
	if max <= 0 {
		max = 100
	}
	return &Trail{max: max, crumbs: make([]Breadcrumb, 0, max)}
}

// Add appends a breadcrumb, evicting the oldest entry when full.
func (t *Trail) Add(crumb Breadcrumb) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.crumbs) == t.max {
		copy(t.crumbs, t.crumbs[1:])
		t.crumbs = t.crumbs[:t.max-1]
	}
	t.crumbs = append(t.crumbs, crumb)
}

// Snapshot returns a copy of the current trail, oldest first.
func (t *Trail) Snapshot() []Breadcrumb {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Breadcrumb(nil), t.crumbs...)
}

// Len returns the number of retained entries.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.crumbs)
}

// Emitter produces the unconditional log line and breadcrumb for every
// invocation start and end. Emission does not depend on the sampling
// decision: error context is preserved even for traces the backend never
// sees.
type Emitter struct {
	logger  *Logger
	backend Backend
}

// NewEmitter creates an emitter writing through the given logger and
// backend.
func NewEmitter(logger *Logger, backend Backend) *Emitter {
	return &Emitter{
		logger:  logger.NewComponentLogger("emitter"),
		backend: backend,
	}
}

// EventStarted emits the start log line and breadcrumb.
func (e *Emitter) EventStarted(inv event.Invocation) error {
	e.logger.WithEvent(inv.Name).Infof("'%s' started", inv.Name)

	return e.backend.AddBreadcrumb(Breadcrumb{
		Message:   fmt.Sprintf("%s started", inv.Name),
		Category:  inv.Name,
		Level:     LevelInfo,
		Timestamp: inv.StartedAt,
	})
}

// EventEnded emits the completion log line and breadcrumb: info level for
// success, error level with the failure summary otherwise.
func (e *Emitter) EventEnded(inv event.Invocation) error {
	crumb := Breadcrumb{
		Category:  inv.Name,
		Timestamp: inv.EndedAt,
	}

	if inv.Failed() {
		crumb.Message = fmt.Sprintf("%s failed: %s", inv.Name, summarize(inv.Err))
		crumb.Level = LevelError
		e.logger.WithEvent(inv.Name).WithError(inv.Err).Errorf("'%s' failed", inv.Name)
	} else {
		crumb.Message = fmt.Sprintf("%s finished", inv.Name)
		crumb.Level = LevelInfo
		e.logger.WithEvent(inv.Name).Infof("'%s' finished", inv.Name)
	}

	return e.backend.AddBreadcrumb(crumb)
}

// summarize renders an error for a breadcrumb message.
func summarize(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
