// Package server is the HTTP front of the chat service: per-project
// message, history, suggestion and stats endpoints plus a health probe.
// Identity arrives as an X-User-ID header from the gateway; failures
// map to stable reason codes and client-safe messages.
package server
