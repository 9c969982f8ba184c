package observability

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// The ADOT Lambda layer runs its collector here
const collectorEndpoint = "localhost:4317"

const defaultServiceName = "attendance-backend"

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Endpoint    string
	SampleRate  float64 // 0 picks a rate from Environment
}

// TracerProvider owns the SDK provider, if any. A disabled or nil provider
// hands out no-op tracers and its lifecycle methods do nothing.
type TracerProvider struct {
	sdk    *sdktrace.TracerProvider
	tracer trace.Tracer
}

// InitTracing exports spans over OTLP/gRPC and installs the provider and the
// W3C propagators globally. With tracing disabled nothing is installed.
func InitTracing(ctx context.Context, config TracingConfig) (*TracerProvider, error) {
	name := config.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	if !config.Enabled {
		return &TracerProvider{tracer: noop.NewTracerProvider().Tracer(name)}, nil
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = collectorEndpoint
	}
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if isLoopback(endpoint) {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, resourceAttributes(name, config.Environment)...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	rate := config.SampleRate
	if rate == 0 {
		rate = getSampleRate(config.Environment)
	}

	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)
	otel.SetTracerProvider(sdk)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{sdk: sdk, tracer: sdk.Tracer(name)}, nil
}

func isLoopback(endpoint string) bool {
	return strings.HasPrefix(endpoint, "localhost:") || strings.HasPrefix(endpoint, "127.0.0.1:")
}

func resourceAttributes(service, environment string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(service),
		attribute.String("deployment.environment", environment),
		attribute.String("cloud.provider", "aws"),
	}
	if fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); fn != "" {
		attrs = append(attrs,
			attribute.String("cloud.platform", "aws_lambda"),
			attribute.String("cloud.region", os.Getenv("AWS_REGION")),
			attribute.String("faas.name", fn),
			attribute.String("faas.version", os.Getenv("AWS_LAMBDA_FUNCTION_VERSION")),
		)
	}
	return attrs
}

var sampleRates = map[string]float64{
	"production": 0.1,
	"staging":    0.5,
}

func getSampleRate(environment string) float64 {
	if rate, ok := sampleRates[environment]; ok {
		return rate
	}
	return 1.0
}

func (tp *TracerProvider) Tracer() trace.Tracer {
	if tp == nil || tp.tracer == nil {
		return noop.NewTracerProvider().Tracer(defaultServiceName)
	}
	return tp.tracer
}

// ForceFlush exports buffered spans. Lambda handlers call it before returning
// because the runtime may freeze the process afterwards.
func (tp *TracerProvider) ForceFlush(ctx context.Context) error {
	if tp == nil || tp.sdk == nil {
		return nil
	}
	return tp.sdk.ForceFlush(ctx)
}

func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp == nil || tp.sdk == nil {
		return nil
	}
	return tp.sdk.Shutdown(ctx)
}
