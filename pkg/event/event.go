package event

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal result of an event invocation.
type Outcome string

const (
	// OutcomeInProgress marks an invocation that has started but not ended.
	OutcomeInProgress Outcome = "in_progress"

	// OutcomeSucceeded marks an invocation that completed without error.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeFailed marks an invocation that completed with an error.
	OutcomeFailed Outcome = "failed"
)

// Invocation is one execution of a named event.
//
// An invocation moves through exactly one lifecycle:
// started -> succeeded or failed. It is never restarted, and the record is
// discarded once observers have processed the end signal; there is no
// long-term retention here.
type Invocation struct {
	// ID uniquely identifies this execution. Every call of the same event
	// produces a fresh ID.
	ID uuid.UUID

	// Name is the event's identifier in the host application.
	Name string

	// Parent is the ID of the enclosing invocation, or uuid.Nil for a root.
	Parent uuid.UUID

	// StartedAt is when the host signalled the start of this invocation.
	StartedAt time.Time

	// EndedAt is when the host signalled completion. Zero while running.
	EndedAt time.Time

	// Outcome is the invocation's result. OutcomeInProgress until the end
	// signal arrives.
	Outcome Outcome

	// Err is the failure detail for OutcomeFailed invocations, nil otherwise.
	Err error
}

// Root reports whether this invocation has no enclosing parent.
func (inv Invocation) Root() bool {
	return inv.Parent == uuid.Nil
}

// Failed reports whether the invocation ended with an error.
func (inv Invocation) Failed() bool {
	return inv.Outcome == OutcomeFailed
}

// Subscriber receives invocation lifecycle signals.
//
// Both methods may return an error; whether that error reaches the host
// application is the subscriber's policy, not the source's. Sources must call
// EventStarted before running the event body and EventEnded after it returns,
// in the same logical call stack.
type Subscriber interface {
	// EventStarted is called when an invocation begins. The invocation's
	// Outcome is OutcomeInProgress and EndedAt is zero.
	EventStarted(inv Invocation) error

	// EventEnded is called when an invocation completes, successfully or not.
	EventEnded(inv Invocation) error
}

// Source is the subscription surface an event-definition system must expose.
type Source interface {
	// Subscribe registers a subscriber for all invocation lifecycle signals.
	// The returned function cancels the subscription.
	Subscribe(sub Subscriber) (cancel func())
}
