// Package rabbit is the RabbitMQ client used by the document indexing
// pipeline. It declares the topology on startup (exchange, durable
// queue, dead letter wiring), keeps the connection alive with a
// reconnection loop and hands deliveries to consumers over a channel.
package rabbit
