// Package usage emits one JSON event per completed chat turn to Kafka,
// keyed by user for per-user ordering. Publishing is best-effort from
// the chat pipeline's point of view: a broker outage degrades analytics,
// never chat.
package usage
