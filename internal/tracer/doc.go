// Package tracer configures OpenTelemetry tracing: an OTLP HTTP
// exporter behind a feature flag, W3C trace context propagation and a
// small span API used by the HTTP layer.
package tracer
