// Package telemetry provides OpenTelemetry integration for the explosion
// runtime. Configuration comes from the standard OTEL_* environment
// variables; when OTEL_ENABLED is not "true" every entry point degrades to
// a no-op so the kernels never pay for tracing they did not ask for.
//
// Environment variables:
//
//	OTEL_ENABLED                 - enable/disable tracing (default: false)
//	OTEL_SERVICE_NAME            - service name (default: femtocode-runtime)
//	OTEL_SERVICE_VERSION         - service version (default: unknown)
//	OTEL_EXPORTER_OTLP_ENDPOINT  - OTLP collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL  - grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_HEADERS   - headers, "k1=v1,k2=v2"
//	OTEL_EXPORTER_OTLP_INSECURE  - use an insecure connection
//	OTEL_TRACES_SAMPLER          - sampler type (default: always_on)
//	OTEL_TRACES_SAMPLER_ARG      - sampler argument (e.g. ratio)
//	OTEL_RESOURCE_ATTRIBUTES     - extra resource attributes, "k1=v1,..."
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by the runtime's spans.
const TracerName = "femtocode-runtime"

var (
	globalConfig *Config
	configOnce   sync.Once
)

// ShutdownFunc flushes and shuts down the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error {
	return nil
}

// Init initializes OpenTelemetry and installs the global TracerProvider.
// When tracing is disabled it returns a no-op shutdown function and leaves
// the default no-op provider in place.
func Init(ctx context.Context) (ShutdownFunc, error) {
	cfg := loadConfig()

	if !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := buildResource(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exporter),
		trace.WithSampler(createSampler(cfg)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Tracer returns the runtime's tracer from the global provider.
func Tracer() oteltrace.Tracer {
	return otel.Tracer(TracerName)
}

// Enabled returns whether OpenTelemetry tracing is enabled.
func Enabled() bool {
	return loadConfig().Enabled
}

// GetConfig returns the current telemetry configuration.
func GetConfig() *Config {
	return loadConfig()
}

// loadConfig loads the environment configuration once.
func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadFromEnv()
	})
	return globalConfig
}

// resetConfigForTesting clears the cached configuration.
func resetConfigForTesting() {
	globalConfig = nil
	configOnce = sync.Once{}
}
