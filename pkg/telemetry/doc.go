// Package telemetry forwards event invocations to an external
// error/performance-tracking backend as nested transactions, spans,
// breadcrumbs, and structured log lines.
//
// The adapter subscribes to an event system's invocation lifecycle (see
// package event) and maps each sampled trace onto the backend's unit model:
// the root invocation becomes a transaction, nested invocations become spans
// under their parent's unit, and the whole tree inherits the root's sampling
// decision. Breadcrumbs and log lines are emitted for every start and end
// regardless of sampling, so error context survives even for unrecorded
// traces.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "checkout"
//
//	tel, err := telemetry.Init(cfg) // DSN and sample rate from SENTRY_DNS / SENTRY_SAMPLE_RATE
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	tel.Attach(eventSource)
//
// # Failure isolation
//
// Every telemetry operation runs behind a guard: errors and panics inside
// the adapter are logged and swallowed so the host's event execution is
// never affected. Setting Config.RaiseInternalErrors lets those failures
// propagate to the caller instead, which is useful only when debugging the
// integration. Configuration errors (bad sample rate, missing DSN) are the
// exception and always surface from Init.
//
// # Correlation
//
// Units are registered by invocation identity, supplied by the event system
// on both lifecycle signals. An end signal with no registered unit is a
// lost-span condition: logged, counted, never fatal by default. A span whose
// enclosing transaction already closed is dropped with a warning rather than
// buffered or reopened.
package telemetry
