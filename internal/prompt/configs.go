package prompt

import (
	"os"
	"strconv"
)

// Config bounds the assembled prompt.
type Config struct {
	// MaxContextChars is the character budget for the document context
	// section. Chunks that do not fit whole are skipped.
	MaxContextChars int `yaml:"max_context_chars" env:"PROMPT_MAX_CONTEXT_CHARS"`

	// HistoryPairs is how many recent user/assistant pairs are packed.
	HistoryPairs int `yaml:"history_pairs" env:"PROMPT_HISTORY_PAIRS"`
}

// DefaultConfig returns the default prompt budgets.
func DefaultConfig() *Config {
	return &Config{
		MaxContextChars: 6000,
		HistoryPairs:    5,
	}
}

// NewConfig builds a Config from environment variables, falling back to
// the defaults where a variable is unset.
func NewConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PROMPT_MAX_CONTEXT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxContextChars = n
		}
	}
	if v := os.Getenv("PROMPT_HISTORY_PAIRS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.HistoryPairs = n
		}
	}

	return cfg
}
