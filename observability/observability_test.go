package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("command-runner")

	if cfg.ServiceName != "command-runner" {
		t.Errorf("expected ServiceName 'command-runner', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("command-runner")

	if cfg.ServiceName != "command-runner" {
		t.Errorf("expected ServiceName 'command-runner', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewCommandMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewCommandMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordCommandStart(ctx)
	metrics.RecordCommandEnd(ctx, "echo", 0, 100*time.Millisecond)
	metrics.RecordRetry(ctx, "echo", 2)
	metrics.RecordError(ctx, "RETRY_EXHAUSTED", "process")
}

func TestNewResourceCarriesServiceMetadata(t *testing.T) {
	res, err := newResource("command-runner", "1.2.3", "staging")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attrs := map[string]string{}
	for _, attr := range res.Attributes() {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	if attrs["service.name"] != "command-runner" {
		t.Errorf("expected service.name 'command-runner', got %q", attrs["service.name"])
	}
	if attrs["service.version"] != "1.2.3" {
		t.Errorf("expected service.version '1.2.3', got %q", attrs["service.version"])
	}
	if attrs["environment"] != "staging" {
		t.Errorf("expected environment 'staging', got %q", attrs["environment"])
	}
}

func TestStartSpanRecordsCommandAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanCommandRun)
	SetSpanAttribute(ctx, AttrBinary, "echo")
	SetSpanAttribute(ctx, AttrExitCode, 0)
	SetSpanError(ctx, fmt.Errorf("transient"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name() != SpanCommandRun {
		t.Errorf("expected span name %q, got %q", SpanCommandRun, got.Name())
	}

	attrs := map[string]string{}
	for _, attr := range got.Attributes() {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}
	if attrs[AttrBinary] != "echo" {
		t.Errorf("expected binary attribute 'echo', got %q", attrs[AttrBinary])
	}
	if attrs[AttrExitCode] != "0" {
		t.Errorf("expected exit code attribute '0', got %q", attrs[AttrExitCode])
	}
	if len(got.Events()) == 0 {
		t.Error("expected recorded error event")
	}
}

func TestTracer(t *testing.T) {
	if tracer := Tracer("test-tracer"); tracer == nil {
		t.Fatal("expected non-nil tracer")
	}
}

func TestMeter(t *testing.T) {
	if meter := Meter("test-meter"); meter == nil {
		t.Fatal("expected non-nil meter")
	}
}
