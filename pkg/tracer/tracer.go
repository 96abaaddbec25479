package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"dvlottery.backend/pkg/logger"
)

var newExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

// Init installs the global tracer provider. With an empty endpoint tracing stays
// local: spans are created but never exported.
func Init(serviceName, version, endpoint string) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)

	if endpoint == "" {
		logger.Info(context.Background(), "Tracing export disabled")
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		install(tp)
		return tp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := newExporter(ctx, endpoint)
	if err != nil {
		logger.Error(context.Background(), "Failed to create OTLP exporter, tracing export disabled",
			zap.String("endpoint", endpoint), zap.Error(err))
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		install(tp)
		return tp
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	install(tp)
	logger.Info(context.Background(), "Tracer initialized", zap.String("endpoint", endpoint))
	return tp
}

func install(tp *sdktrace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes pending spans
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) {
	if tp == nil {
		return
	}
	if err := tp.Shutdown(ctx); err != nil {
		logger.Error(ctx, "Tracer shutdown failed", zap.Error(err))
	}
}
