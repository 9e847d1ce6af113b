package telemetry

import (
	"context"
	"testing"
)

// otelTestBackend builds the real OpenTelemetry backend with no exporter, so
// spans are generated but never leave the process.
func otelTestBackend(t *testing.T) *otelBackend {
	t.Helper()
	cfg := testConfig()
	cfg.Exporter = "none"

	b, err := newOTelBackend(cfg, testLogger(), NewTrail(10))
	if err != nil {
		t.Fatalf("newOTelBackend: %v", err)
	}
	t.Cleanup(func() { _ = b.Shutdown(context.Background()) })
	return b
}

func TestOTelBackendUnitLifecycle(t *testing.T) {
	b := otelTestBackend(t)

	txn, err := b.StartTransaction("root")
	if err != nil {
		t.Fatalf("StartTransaction: %v", err)
	}
	if txn.UnitName() != "root" {
		t.Errorf("UnitName = %q", txn.UnitName())
	}

	span, err := b.StartSpan(txn, "child")
	if err != nil {
		t.Fatalf("StartSpan: %v", err)
	}

	// Child must share the transaction's trace.
	tu := txn.(*otelUnit)
	su := span.(*otelUnit)
	if su.span.SpanContext().TraceID() != tu.span.SpanContext().TraceID() {
		t.Error("span not part of the transaction's trace")
	}

	if err := b.SetTag(txn, "lookup calls", "3"); err != nil {
		t.Errorf("SetTag: %v", err)
	}
	if err := b.FinishUnit(span, StatusOK); err != nil {
		t.Errorf("FinishUnit(span): %v", err)
	}
	if err := b.FinishUnit(txn, StatusInternalError); err != nil {
		t.Errorf("FinishUnit(txn): %v", err)
	}
}

func TestOTelBackendRejectsForeignUnits(t *testing.T) {
	b := otelTestBackend(t)

	foreign := noopUnit{name: "foreign"}
	if _, err := b.StartSpan(foreign, "child"); err == nil {
		t.Error("StartSpan accepted a foreign unit")
	}
	if err := b.FinishUnit(foreign, StatusOK); err == nil {
		t.Error("FinishUnit accepted a foreign unit")
	}
	if err := b.SetTag(foreign, "k", "v"); err == nil {
		t.Error("SetTag accepted a foreign unit")
	}
}

func TestOTelBackendBreadcrumbsFillTrail(t *testing.T) {
	b := otelTestBackend(t)

	for i := 0; i < 3; i++ {
		if err := b.AddBreadcrumb(Breadcrumb{Message: "m", Category: "c", Level: LevelInfo}); err != nil {
			t.Fatalf("AddBreadcrumb: %v", err)
		}
	}
	if got := b.trail.Len(); got != 3 {
		t.Errorf("trail length = %d, want 3", got)
	}
}
