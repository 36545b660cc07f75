// Package metrics exposes Prometheus instrumentation for the chat pipeline.
//
// A dedicated registry (with a constant service label) backs an HTTP server
// serving /metrics on its own listener, separate from the API server. The
// built-in instruments cover turn outcomes, per-stage latency, retrieval
// fan-out, and token consumption; ad-hoc metrics can be registered through
// the Create* factories.
package metrics
