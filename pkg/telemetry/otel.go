package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// otelBackend implements Backend over the OpenTelemetry SDK. Transactions
// are root spans, spans are children, and submission rides the SDK's batch
// exporter when the root ends.
//
// Sampling is NOT delegated to the SDK: the adapter's own sampler gates
// trace creation upstream, so the provider always samples what it is given.
type otelBackend struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	trail    *Trail
	logger   *Logger
}

// otelUnit carries the span together with the context that parents its
// children.
type otelUnit struct {
	name string
	ctx  context.Context
	span trace.Span
}

func (u *otelUnit) UnitName() string {
	return u.name
}

// newOTelBackend builds a backend from the adapter configuration. The DSN
// feeds the OTLP exporter endpoint and auth headers.
func newOTelBackend(cfg *Config, logger *Logger, trail *Trail) (*otelBackend, error) {
	hostname, _ := os.Hostname()

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.HostNameKey.String(hostname),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.Exporter {
	case "otlp":
		exporter, err = createOTLPExporter(cfg)
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none":
		exporter = nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(
			exporter,
			sdktrace.WithMaxExportBatchSize(cfg.MaxExportBatchSize),
			sdktrace.WithExportTimeout(cfg.ExportTimeout),
		))
	}

	provider := sdktrace.NewTracerProvider(opts...)

	return &otelBackend{
		provider: provider,
		tracer:   provider.Tracer(cfg.ServiceName),
		trail:    trail,
		logger:   logger.NewComponentLogger("backend"),
	}, nil
}

// createOTLPExporter creates an OTLP gRPC exporter from the parsed DSN.
func createOTLPExporter(cfg *Config) (sdktrace.SpanExporter, error) {
	dsn, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(dsn.Endpoint()),
		otlptracegrpc.WithHeaders(dsn.Headers()),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
	}

	return otlptracegrpc.New(context.Background(), opts...)
}

// StartTransaction opens the root span of a new trace.
func (b *otelBackend) StartTransaction(name string) (Unit, error) {
	ctx, span := b.tracer.Start(context.Background(), name, trace.WithNewRoot())
	return &otelUnit{name: name, ctx: ctx, span: span}, nil
}

// StartSpan opens a child span under parent.
func (b *otelBackend) StartSpan(parent Unit, name string) (Unit, error) {
	pu, ok := parent.(*otelUnit)
	if !ok {
		return nil, fmt.Errorf("parent unit %q was not created by this backend", parent.UnitName())
	}

	ctx, span := b.tracer.Start(pu.ctx, name)
	return &otelUnit{name: name, ctx: ctx, span: span}, nil
}

// FinishUnit closes the span. A unit finishing in error carries the current
// breadcrumb trail as span events for context, mirroring how breadcrumbs
// attach to error reports.
func (b *otelBackend) FinishUnit(u Unit, status Status) error {
	ou, ok := u.(*otelUnit)
	if !ok {
		return fmt.Errorf("unit %q was not created by this backend", u.UnitName())
	}

	if status == StatusOK {
		ou.span.SetStatus(codes.Ok, "")
	} else {
		ou.span.SetStatus(codes.Error, string(status))
		for _, crumb := range b.trail.Snapshot() {
			ou.span.AddEvent(crumb.Message, trace.WithAttributes(
				attribute.String("category", crumb.Category),
				attribute.String("level", string(crumb.Level)),
			), trace.WithTimestamp(crumb.Timestamp))
		}
	}

	ou.span.End()
	return nil
}

// SetTag attaches a tag to the unit as a span attribute.
func (b *otelBackend) SetTag(u Unit, key, value string) error {
	ou, ok := u.(*otelUnit)
	if !ok {
		return fmt.Errorf("unit %q was not created by this backend", u.UnitName())
	}
	ou.span.SetAttributes(attribute.String(key, value))
	return nil
}

// AddBreadcrumb appends to the process-wide trail and mirrors the entry to
// the debug log.
func (b *otelBackend) AddBreadcrumb(crumb Breadcrumb) error {
	b.trail.Add(crumb)
	b.logger.WithEvent(crumb.Category).Debugf("breadcrumb: %s", crumb.Message)
	return nil
}

// Shutdown flushes pending spans and releases the exporter.
func (b *otelBackend) Shutdown(ctx context.Context) error {
	return b.provider.Shutdown(ctx)
}

// ForceFlush exports all pending spans immediately.
func (b *otelBackend) ForceFlush(ctx context.Context) error {
	return b.provider.ForceFlush(ctx)
}
