package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Norconex/commons-lang-sub007/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// CommandMetrics holds the metric instruments recorded around command
// execution and retrying.
type CommandMetrics struct {
	commandTotal    metric.Int64Counter
	commandDuration metric.Float64Histogram
	commandActive   metric.Int64UpDownCounter
	retryTotal      metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewCommandMetrics creates the command metric instruments on the given
// meter.
func NewCommandMetrics(meter metric.Meter) (*CommandMetrics, error) {
	commandTotal, err := meter.Int64Counter("command.total",
		metric.WithDescription("Total number of executed commands"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command.total counter: %w", err)
	}

	commandDuration, err := meter.Float64Histogram("command.duration",
		metric.WithDescription("Duration of command executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command.duration histogram: %w", err)
	}

	commandActive, err := meter.Int64UpDownCounter("command.active",
		metric.WithDescription("Number of currently running commands"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command.active gauge: %w", err)
	}

	retryTotal, err := meter.Int64Counter("command.retries",
		metric.WithDescription("Total number of command retry attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating command.retries counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &CommandMetrics{
		commandTotal:    commandTotal,
		commandDuration: commandDuration,
		commandActive:   commandActive,
		retryTotal:      retryTotal,
		errorTotal:      errorTotal,
	}, nil
}

// RecordCommandStart increments the active command count.
func (m *CommandMetrics) RecordCommandStart(ctx context.Context) {
	m.commandActive.Add(ctx, 1)
}

// RecordCommandEnd decrements active commands and records the completed
// execution with its exit code.
func (m *CommandMetrics) RecordCommandEnd(ctx context.Context, binary string, exitCode int, duration time.Duration) {
	m.commandActive.Add(ctx, -1)
	m.commandTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("binary", binary),
		attribute.String("exit_code", strconv.Itoa(exitCode)),
	))
	m.commandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("binary", binary),
	))
}

// RecordRetry records one retry attempt for a command.
func (m *CommandMetrics) RecordRetry(ctx context.Context, binary string, attempt int) {
	m.retryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("binary", binary),
		attribute.Int("attempt", attempt),
	))
}

// RecordError records an error by type and component.
func (m *CommandMetrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
