package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"trendwatch-backend/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

var state struct {
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
}

// Setup installs global tracer and meter providers that export over otlp
// according to config.
func Setup(ctx context.Context, serviceName string, config Config) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := newResource(serviceName)
	if err != nil {
		return err
	}

	tracerProvider, err := newTraceProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tracerProvider)
	state.tracerProvider = tracerProvider

	meterProvider, err := newMetricProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(meterProvider)
	state.meterProvider = meterProvider

	return nil
}

// searches up the filesystem from the cwd to find a file
// called telemetry.json5, once found it will then use it
// as a config to setup telemetry. a missing file disables
// otlp export instead of failing.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	config, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no telemetry.json5 found, otlp export is disabled", "service", serviceName)
		return nil
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, config)
}

// Shutdown flushes and stops whatever Setup started. Safe to call when
// Setup never ran.
func Shutdown(ctx context.Context) error {
	errlist := []error{}
	if state.tracerProvider != nil {
		err := state.tracerProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
		state.tracerProvider = nil
	}
	if state.meterProvider != nil {
		err := state.meterProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
		state.meterProvider = nil
	}
	return errors.Join(errlist...)
}

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once
func SetupForTesting(serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true, false)
	err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		panic(err)
	}

	return func() {
		err := Shutdown(context.Background())
		if err != nil {
			panic(err)
		}
	}
}
