// Package event defines the contract between a host application's event
// system and the telemetry adapter.
//
// An event is a named unit of work (a function call, a request handler) that
// may invoke other events, forming a nested call tree. The package models one
// execution of an event as an Invocation and exposes the lifecycle to
// observers through the Subscriber interface:
//
//	type auditor struct{}
//
//	func (auditor) EventStarted(inv event.Invocation) error { ... }
//	func (auditor) EventEnded(inv event.Invocation) error   { ... }
//
//	cancel := source.Subscribe(auditor{})
//	defer cancel()
//
// Any event-definition system can drive the adapter by implementing Source.
// The package also ships Dispatcher, a minimal in-process Source for hosts
// that do not already have one:
//
//	d := event.NewDispatcher()
//	d.Subscribe(sub)
//
//	err := d.Run(ctx, "import.catalog", func(ctx context.Context) error {
//	    return d.Run(ctx, "import.batch", processBatch)
//	})
//
// Nesting is discovered through the context: Run attaches the invocation
// identity to the child context, so parent/child linkage survives goroutine
// handoffs and suspension points without any thread-local state.
package event
