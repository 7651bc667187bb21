// Package observability configures OpenTelemetry tracing for the service.
package observability

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

// DefaultSampleRatio applies when OTEL_SAMPLER_RATIO is unset or invalid.
const DefaultSampleRatio = 0.1

// Config describes the service for the trace resource.
type Config struct {
	ServiceName string
	Environment string
	Version     string
}

var (
	initOnce sync.Once
	shutdown func(context.Context) error
)

func noopShutdown(context.Context) error { return nil }

// Init installs a global tracer provider when OTEL_ENABLED is true. Spans go
// to OTEL_EXPORTER_OTLP_ENDPOINT over HTTP, or to stdout when no endpoint is
// set. The returned function flushes and stops the provider; it is a no-op
// when tracing is disabled. Only the first call has any effect.
func Init(ctx context.Context, cfg Config) func(context.Context) error {
	initOnce.Do(func() {
		shutdown = noopShutdown
		if !util.ParseBoolEnv("OTEL_ENABLED", false) {
			slog.Debug("observability.Init: tracing disabled")
			return
		}

		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "lettercraft"
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil {
			slog.Warn("observability.Init: resource init failed, continuing", "error", err)
		}

		sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio()))
		tpOpts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sampler),
			sdktrace.WithResource(res),
		}
		exporter, err := buildExporter(ctx)
		if err != nil {
			slog.Warn("observability.Init: exporter init failed, spans will be dropped", "error", err)
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}

		tp := sdktrace.NewTracerProvider(tpOpts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		shutdown = tp.Shutdown
		slog.Info("observability.Init: tracing initialized", "service", serviceName, "endpoint", endpoint())
	})
	return shutdown
}

func buildExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	ep := endpoint()
	if ep == "" {
		slog.Warn("observability.buildExporter: no OTLP endpoint configured, using stdout exporter")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(ep)}
	if util.ParseBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", false) {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if headers := parseHeaders(util.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "")); headers != nil {
		opts = append(opts, otlptracehttp.WithHeaders(headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

func endpoint() string {
	return strings.TrimSpace(util.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""))
}

// sampleRatio reads OTEL_SAMPLER_RATIO, clamped to [0, 1].
func sampleRatio() float64 {
	raw := strings.TrimSpace(util.GetEnv("OTEL_SAMPLER_RATIO", ""))
	if raw == "" {
		return DefaultSampleRatio
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("observability.sampleRatio: invalid ratio, using default", "value", raw)
		return DefaultSampleRatio
	}
	return min(max(f, 0), 1)
}

// parseHeaders reads "k1=v1,k2=v2". Malformed pairs are skipped.
func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		headers[k] = v
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
