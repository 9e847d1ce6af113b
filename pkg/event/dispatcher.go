package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// invocationKey is the context key carrying the active invocation ID.
type invocationKey struct{}

// Dispatcher is a minimal in-process event Source.
//
// It exists for hosts that have no event system of their own and for tests;
// richer systems only need to implement Source. Run is safe for concurrent
// use across independent call stacks: each stack's nesting is carried in its
// own context chain, so sibling traces never see each other's parents.
type Dispatcher struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Subscriber
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[int]Subscriber)}
}

// Subscribe registers a subscriber. The returned function removes it.
func (d *Dispatcher) Subscribe(sub Subscriber) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = sub
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

// Run executes fn as a named event invocation.
//
// The invocation's parent is whatever invocation is active in ctx, so nested
// Run calls produce a correctly linked call tree even across goroutine or
// suspension boundaries, as long as the context is threaded through. fn's
// error decides the outcome and is always returned to the caller; subscriber
// errors are joined in (a subscriber that swallows internally returns nil and
// contributes nothing).
func (d *Dispatcher) Run(ctx context.Context, name string, fn func(context.Context) error) error {
	parent, _ := CurrentInvocation(ctx)

	inv := Invocation{
		ID:        uuid.New(),
		Name:      name,
		Parent:    parent,
		StartedAt: time.Now(),
		Outcome:   OutcomeInProgress,
	}

	startErr := d.notify(func(sub Subscriber) error { return sub.EventStarted(inv) })

	fnErr := fn(context.WithValue(ctx, invocationKey{}, inv.ID))

	inv.EndedAt = time.Now()
	if fnErr != nil {
		inv.Outcome = OutcomeFailed
		inv.Err = fnErr
	} else {
		inv.Outcome = OutcomeSucceeded
	}

	endErr := d.notify(func(sub Subscriber) error { return sub.EventEnded(inv) })

	return errors.Join(fnErr, startErr, endErr)
}

// notify fans a signal out to all current subscribers.
func (d *Dispatcher) notify(signal func(Subscriber) error) error {
	d.mu.RLock()
	subs := make([]Subscriber, 0, len(d.subs))
	for _, sub := range d.subs {
		subs = append(subs, sub)
	}
	d.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := signal(sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CurrentInvocation returns the invocation ID active in ctx, if any.
func CurrentInvocation(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(invocationKey{}).(uuid.UUID)
	return id, ok
}
