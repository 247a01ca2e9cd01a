package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen11/user-lookup-service/internal/platform/config"
	"github.com/jsamuelsen11/user-lookup-service/internal/platform/telemetry"
)

// otelProviders holds the SDK providers for the process. Every field is nil
// when telemetry is disabled; middleware treats nil metrics as a no-op.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	tc := cfg.Telemetry
	if !tc.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx, tc.ServiceName, tc.Exporter, tc.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	o := &otelProviders{tracer: tp}

	o.meter, err = telemetry.InitMeter(ctx, tc.ServiceName, tc.Exporter, tc.Endpoint)
	if err != nil {
		_ = o.shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	o.metrics, err = telemetry.NewMetrics(o.meter, tc.ServiceName)
	if err != nil {
		_ = o.shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}
	return o, nil
}

func (o *otelProviders) shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter: %w", err))
		}
	}
	return errors.Join(errs...)
}

// flush exports buffered spans and metrics, bounded by flushTimeout.
func (o *otelProviders) flush(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := o.shutdown(ctx); err != nil {
		logger.Error("flushing telemetry", slog.Any("error", err))
	}
}
