// Package observability bootstraps OpenTelemetry tracing and metrics and
// exposes the metric instruments used around command execution and
// retrying. Both providers export over OTLP HTTP and register themselves
// globally; call the returned providers' Shutdown on exit.
package observability
