package rabbit

import (
	"os"
	"strconv"
)

// Config describes the broker connection and the channel topology the
// client declares on startup.
type Config struct {
	Connection Connection
	Channel    Channel
	DeadLetter DeadLetter
}

// Connection identifies the broker and credentials.
type Connection struct {
	Host       string
	Port       uint
	User       string
	Password   string
	SSLEnabled bool
}

// Channel describes the exchange, queue and binding the client uses.
// Consumers declare the full topology; publishers only need the
// exchange and routing key.
type Channel struct {
	ExchangeName  string
	ExchangeType  string
	RoutingKey    string
	QueueName     string
	PrefetchCount int
	IsConsumer    bool
	ContentType   string
}

// DeadLetter routes messages that exhaust their TTL on the main queue.
// Disabled when ExchangeName is empty or TTLSeconds is zero.
type DeadLetter struct {
	ExchangeName string
	QueueName    string
	RoutingKey   string
	TTLSeconds   int
}

// DefaultConfig returns the consumer topology for document events.
func DefaultConfig() Config {
	return Config{
		Connection: Connection{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
		},
		Channel: Channel{
			ExchangeName:  "documents",
			ExchangeType:  "topic",
			RoutingKey:    "document.extracted",
			QueueName:     "document-indexing",
			PrefetchCount: 4,
			IsConsumer:    true,
			ContentType:   "application/json",
		},
		DeadLetter: DeadLetter{
			ExchangeName: "documents-dlx",
			QueueName:    "document-indexing-dlq",
			RoutingKey:   "document.extracted.dead",
			TTLSeconds:   3600,
		},
	}
}

// NewConfig loads the broker settings from the environment.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("RABBIT_HOST"); v != "" {
		cfg.Connection.Host = v
	}
	if v := os.Getenv("RABBIT_PORT"); v != "" {
		if p, err := strconv.ParseUint(v, 10, 16); err == nil {
			cfg.Connection.Port = uint(p)
		}
	}
	if v := os.Getenv("RABBIT_USER"); v != "" {
		cfg.Connection.User = v
	}
	if v := os.Getenv("RABBIT_PASSWORD"); v != "" {
		cfg.Connection.Password = v
	}
	if v := os.Getenv("RABBIT_SSL"); v != "" {
		cfg.Connection.SSLEnabled = v == "true" || v == "1"
	}

	if v := os.Getenv("RABBIT_EXCHANGE"); v != "" {
		cfg.Channel.ExchangeName = v
	}
	if v := os.Getenv("RABBIT_ROUTING_KEY"); v != "" {
		cfg.Channel.RoutingKey = v
	}
	if v := os.Getenv("RABBIT_QUEUE"); v != "" {
		cfg.Channel.QueueName = v
	}
	if v := os.Getenv("RABBIT_PREFETCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Channel.PrefetchCount = n
		}
	}

	return cfg
}
