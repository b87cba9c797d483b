package infra

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"filevault/config"
)

// TelemetryClient owns the OTel trace and metric providers and the request
// counters the controllers record into. Without an OTLP endpoint the
// providers are created without exporters and everything becomes a no-op.
type TelemetryClient struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider

	Uploads   metric.Int64Counter
	Listings  metric.Int64Counter
	Deletions metric.Int64Counter
}

func InitTelemetryClient(cfg *config.EnvConfig) *TelemetryClient {
	ctx := context.Background()

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.Telemetry.ServiceName),
	)

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	metricOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.Telemetry.OTLPEndpoint != "" {
		traceExporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
		)
		if err != nil {
			panic(fmt.Sprintf("Failed to initialize OTLP trace exporter: %v", err))
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(traceExporter))

		metricExporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
		)
		if err != nil {
			panic(fmt.Sprintf("Failed to initialize OTLP metric exporter: %v", err))
		}
		metricOpts = append(metricOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	meterProvider := sdkmetric.NewMeterProvider(metricOpts...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		panic(fmt.Sprintf("Failed to start runtime instrumentation: %v", err))
	}

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	uploads, err := meter.Int64Counter("filevault.uploads",
		metric.WithDescription("Accepted file uploads"))
	if err != nil {
		panic(fmt.Sprintf("Failed to create uploads counter: %v", err))
	}
	listings, err := meter.Int64Counter("filevault.listings",
		metric.WithDescription("Owner listing queries served"))
	if err != nil {
		panic(fmt.Sprintf("Failed to create listings counter: %v", err))
	}
	deletions, err := meter.Int64Counter("filevault.deletions",
		metric.WithDescription("File deletion requests served"))
	if err != nil {
		panic(fmt.Sprintf("Failed to create deletions counter: %v", err))
	}

	return &TelemetryClient{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Uploads:        uploads,
		Listings:       listings,
		Deletions:      deletions,
	}
}

func (t *TelemetryClient) Shutdown(ctx context.Context) error {
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	return t.MeterProvider.Shutdown(ctx)
}
