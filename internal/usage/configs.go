package usage

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the Kafka connection for usage events.
type Config struct {
	// Brokers is the comma-separated broker list.
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`

	// Topic is the usage event topic.
	Topic string `yaml:"topic" env:"KAFKA_USAGE_TOPIC"`

	// BatchTimeout bounds how long events buffer before a write.
	BatchTimeout time.Duration `yaml:"batch_timeout"`

	// WriteTimeout bounds a single write call.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultConfig returns the default Kafka settings.
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		Topic:        "chat.usage",
		BatchTimeout: 100 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// NewConfig builds a Config from environment variables, falling back to
// the defaults where a variable is unset.
func NewConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_USAGE_TOPIC"); v != "" {
		cfg.Topic = v
	}

	return cfg
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("usage: missing KAFKA_BROKERS")
	}
	if c.Topic == "" {
		return fmt.Errorf("usage: missing KAFKA_USAGE_TOPIC")
	}
	return nil
}
