package observability

import (
	"context"
	"time"

	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/logger"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	opCounter      otelmetric.Int64Counter
	opDuration     otelmetric.Float64Histogram
}

// New wires an OTel meter onto the default Prometheus registry and, when a
// Jaeger endpoint is configured, a batching tracer. Instrument names must not
// collide with the promauto collectors in package metrics, which share the
// default registry.
func New(cfg config.ObservabilityConfig, log logger.Logger) *Observability {
	return newWithRegisterer(cfg, log, prom.DefaultRegisterer)
}

func newWithRegisterer(cfg config.ObservabilityConfig, log logger.Logger, reg prom.Registerer) *Observability {
	o := &Observability{tracer: noop.NewTracerProvider().Tracer(cfg.ServiceName)}

	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
		o.meter = o.meterProvider.Meter(cfg.ServiceName)

		o.opCounter, err = o.meter.Int64Counter(
			"placement_store_calls",
			otelmetric.WithDescription("Number of store calls"),
		)
		if err != nil {
			log.Warn("Failed to create store call counter", map[string]interface{}{"error": err})
		}
		o.opDuration, err = o.meter.Float64Histogram(
			"placement_store_call_duration",
			otelmetric.WithDescription("Store call duration"),
			otelmetric.WithUnit("ms"),
		)
		if err != nil {
			log.Warn("Failed to create store call histogram", map[string]interface{}{"error": err})
		}
	}

	if cfg.JaegerEndpoint != "" {
		traceExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
		if err != nil {
			log.Warn("Failed to create Jaeger exporter", map[string]interface{}{
				"error":    err,
				"endpoint": cfg.JaegerEndpoint,
			})
		} else {
			o.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
			otel.SetTracerProvider(o.tracerProvider)
			o.tracer = o.tracerProvider.Tracer(cfg.ServiceName)
		}
	}

	return o
}

// Noop returns an Observability that records nothing.
func Noop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("noop")}
}

// StartSpan starts a span for one store or index call.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (o *Observability) RecordOperation(ctx context.Context, table, operation, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("table", table),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
	if o.opCounter != nil {
		o.opCounter.Add(ctx, 1, attrs)
	}
	if o.opDuration != nil {
		o.opDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
}
