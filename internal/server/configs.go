package server

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config describes the HTTP listener.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the development listener settings.
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        8000,
		ReadTimeout: 15 * time.Second,
		// Turns run detached, but the handler still waits for the answer;
		// the write timeout must cover a full completion.
		WriteTimeout:    90 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// NewConfig loads listener settings from the environment.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Port = p
		}
	}

	return cfg
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
