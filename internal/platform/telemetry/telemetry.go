// Package telemetry sets up OpenTelemetry tracing and metrics for the
// service. Profiles pick the "stdout" exporter for development or "otlp"
// (OTLP/HTTP) for a collector:
//
//	tp, err := telemetry.InitTracer(ctx, "user-lookup-service", "otlp", "http://otel-collector:4318")
//	mp, err := telemetry.InitMeter(ctx, "user-lookup-service", "otlp", "http://otel-collector:4318")
//	metrics, err := telemetry.NewMetrics(mp, "user-lookup-service")
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// Supported exporter names.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// instrumentationScope names the meter that owns every instrument below.
const instrumentationScope = "github.com/jsamuelsen11/user-lookup-service"

// Metric and span attribute keys.
var (
	AttrHTTPMethod  = attribute.Key("http.method")
	AttrHTTPStatus  = attribute.Key("http.status_code")
	AttrDBOperation = attribute.Key("db.operation")
	AttrDBSystem    = attribute.Key("db.system")
	AttrCause       = attribute.Key("cause")
	AttrResult      = attribute.Key("result")
	AttrService     = attribute.Key("service.name")
)

var (
	errUnsupportedExporter = errors.New("unsupported exporter")
	errMissingEndpoint     = errors.New("otlp exporter requires an endpoint")
)

// Metrics holds the instruments the service records into.
type Metrics struct {
	// Inbound HTTP, recorded by the OpenTelemetry middleware.
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter

	// One per request seen by the visitor counter hook.
	VisitorTotal metric.Int64Counter

	// User store queries, recorded by sqlstore.
	QueryDuration metric.Float64Histogram
	QueryTotal    metric.Int64Counter
}

// InitTracer installs a global TracerProvider exporting to stdout or to an
// OTLP/HTTP collector at endpoint, plus the W3C trace-context and baggage
// propagators. The caller owns Shutdown.
func InitTracer(ctx context.Context, serviceName, exporter, endpoint string) (*sdktrace.TracerProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	spanExporter, err := newSpanExporter(ctx, exporter, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

// InitMeter installs a global MeterProvider with a periodic reader over the
// chosen exporter. The caller owns Shutdown.
func InitMeter(ctx context.Context, serviceName, exporter, endpoint string) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(serviceName)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	metricExporter, err := newMetricExporter(ctx, exporter, endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// NewMetrics registers every instrument on mp. The visitor counter stamps
// service.name on each measurement so deployments sharing a backend can be
// told apart.
func NewMetrics(mp metric.MeterProvider, serviceName string) (*Metrics, error) {
	b := &instruments{meter: mp.Meter(instrumentationScope)}

	m := &Metrics{
		ServerRequestDuration: b.histogram("http.server.request.duration", "s", "Duration of incoming HTTP requests"),
		ServerRequestTotal:    b.counter("http.server.request.total", "{request}", "Total number of incoming HTTP requests"),
		QueryDuration:         b.histogram("db.client.query.duration", "s", "Duration of user store queries"),
		QueryTotal:            b.counter("db.client.query.total", "{query}", "Total number of user store queries"),
	}
	visitors := b.counter("app.visitor.total", "{visitor}", "Inbound requests counted by the visitor counter hook")

	if b.err != nil {
		return nil, b.err
	}
	m.VisitorTotal = &serviceCounter{Int64Counter: visitors, service: serviceName}
	return m, nil
}

// instruments creates instruments on one meter and keeps the first error, so
// NewMetrics can declare them all before checking.
type instruments struct {
	meter metric.Meter
	err   error
}

func (b *instruments) histogram(name, unit, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithUnit(unit), metric.WithDescription(desc))
	b.keep(name, err)
	return h
}

func (b *instruments) counter(name, unit, desc string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithUnit(unit), metric.WithDescription(desc))
	b.keep(name, err)
	return c
}

func (b *instruments) keep(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("creating %s: %w", name, err)
	}
}

// serviceCounter stamps every measurement with the service name.
type serviceCounter struct {
	metric.Int64Counter
	service string
}

func (c *serviceCounter) Add(ctx context.Context, incr int64, opts ...metric.AddOption) {
	opts = append(opts, metric.WithAttributes(AttrService.String(c.service)))
	c.Int64Counter.Add(ctx, incr, opts...)
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newSpanExporter(ctx context.Context, exporter, endpoint string) (sdktrace.SpanExporter, error) {
	switch exporter {
	case ExporterOTLP:
		target, err := parseCollector(endpoint)
		if err != nil {
			return nil, err
		}
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(target.hostPort)}
		if target.plaintext {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedExporter, exporter)
	}
}

func newMetricExporter(ctx context.Context, exporter, endpoint string) (sdkmetric.Exporter, error) {
	switch exporter {
	case ExporterOTLP:
		target, err := parseCollector(endpoint)
		if err != nil {
			return nil, err
		}
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(target.hostPort)}
		if target.plaintext {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	case ExporterStdout:
		return stdoutmetric.New()
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedExporter, exporter)
	}
}

// collector is an OTLP/HTTP destination. The exporters want a bare host:port
// and a separate TLS switch rather than a URL.
type collector struct {
	hostPort  string
	plaintext bool
}

// parseCollector accepts either a URL ("https://otel:4318") or a bare
// host:port. Only an explicit https scheme enables TLS.
func parseCollector(endpoint string) (collector, error) {
	if endpoint == "" {
		return collector{}, errMissingEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return collector{hostPort: endpoint, plaintext: true}, nil
	}
	return collector{hostPort: u.Host, plaintext: u.Scheme != "https"}, nil
}
