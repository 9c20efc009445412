package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"codekata-backend/application/ports"
	"codekata-backend/domain/tag"
)

// TracerProvider wraps the OpenTelemetry tracer provider
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// InitTracing initializes distributed tracing with an OTLP gRPC exporter
// and installs the W3C trace context propagator globally.
func InitTracing(serviceName, environment, endpoint string) (*TracerProvider, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(), // Use TLS in production
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()), // Adjust sampling in production
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &TracerProvider{provider: tp}, nil
}

// Shutdown flushes pending spans and shuts down the tracer provider
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.provider.Shutdown(ctx)
}

// TraceTagRepository wraps the tag repository so every persistence call
// shows up as a child span. The tag repository carries the hierarchy, so
// it is the one worth watching.
func TraceTagRepository(repo ports.TagRepository, tracer trace.Tracer) ports.TagRepository {
	return &tracedTagRepository{
		inner:  repo,
		tracer: tracer,
	}
}

type tracedTagRepository struct {
	inner  ports.TagRepository
	tracer trace.Tracer
}

func (r *tracedTagRepository) Save(ctx context.Context, record *tag.Tag) error {
	ctx, span := r.tracer.Start(ctx, "repository.Save",
		trace.WithAttributes(
			attribute.String("tag.id", record.ID.String()),
			attribute.String("tag.name", record.Name),
		),
	)
	defer span.End()

	err := r.inner.Save(ctx, record)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *tracedTagRepository) SaveWithParentCheck(ctx context.Context, record *tag.Tag, parentID tag.ID) error {
	ctx, span := r.tracer.Start(ctx, "repository.SaveWithParentCheck",
		trace.WithAttributes(
			attribute.String("tag.id", record.ID.String()),
			attribute.String("parent.id", parentID.String()),
		),
	)
	defer span.End()

	err := r.inner.SaveWithParentCheck(ctx, record, parentID)
	if err != nil {
		span.RecordError(err)
	}

	return err
}

func (r *tracedTagRepository) FindByID(ctx context.Context, id tag.ID) (*tag.Tag, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.String("tag.id", id.String()),
		),
	)
	defer span.End()

	record, err := r.inner.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
	}

	return record, err
}

func (r *tracedTagRepository) FindByName(ctx context.Context, name string) (*tag.Tag, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindByName",
		trace.WithAttributes(
			attribute.String("tag.name", name),
		),
	)
	defer span.End()

	record, err := r.inner.FindByName(ctx, name)
	if err != nil {
		span.RecordError(err)
	}

	return record, err
}

func (r *tracedTagRepository) FindAll(ctx context.Context) ([]*tag.Tag, error) {
	ctx, span := r.tracer.Start(ctx, "repository.FindAll")
	defer span.End()

	records, err := r.inner.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
	}

	span.SetAttributes(attribute.Int("tag.count", len(records)))

	return records, err
}

func (r *tracedTagRepository) Delete(ctx context.Context, id tag.ID) error {
	ctx, span := r.tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(
			attribute.String("tag.id", id.String()),
		),
	)
	defer span.End()

	err := r.inner.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
	}

	return err
}
