package completion

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Endpoint is the base URL of the OpenAI-compatible chat API.
	Endpoint string

	// APIKey is the bearer token for the chat API.
	APIKey string

	// DefaultModel is used when a turn does not name a model.
	DefaultModel string

	// Timeout bounds a single completion call. Default 60s.
	Timeout time.Duration

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature for generation.
	Temperature float64
}

// NewConfig reads from environment variables.
func NewConfig() *Config {
	cfg := &Config{
		Endpoint:     os.Getenv("COMPLETION_ENDPOINT"),
		APIKey:       os.Getenv("COMPLETION_API_KEY"),
		DefaultModel: os.Getenv("COMPLETION_MODEL"),
		Timeout:      60 * time.Second,
		MaxTokens:    1000,
		Temperature:  0.7,
	}

	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o-mini"
	}
	if v := os.Getenv("COMPLETION_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("COMPLETION_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("COMPLETION_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}

	return cfg
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("completion: missing COMPLETION_ENDPOINT")
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("completion: missing COMPLETION_MODEL")
	}
	return nil
}
