package chat

import (
	"os"
	"strconv"
	"time"
)

// Config tunes the chat turn pipeline.
type Config struct {
	// TopK is how many chunks retrieval asks for per question.
	TopK int

	// MinScore drops retrieved chunks below this similarity.
	MinScore float32

	// HistoryLimit is how many prior messages feed the prompt.
	HistoryLimit int

	// MaxContentLength bounds the user question in characters.
	MaxContentLength int

	// RetrievalRetries is how many extra attempts a failed retrieval
	// gets before the turn is abandoned.
	RetrievalRetries int

	// RateLimitRetries is how many extra attempts a rate limited
	// completion gets. Backoff doubles from RateLimitBackoff.
	RateLimitRetries int
	RateLimitBackoff time.Duration
}

// DefaultConfig returns the production chat settings.
func DefaultConfig() Config {
	return Config{
		TopK:             5,
		MinScore:         0.0,
		HistoryLimit:     10,
		MaxContentLength: 2000,
		RetrievalRetries: 1,
		RateLimitRetries: 2,
		RateLimitBackoff: time.Second,
	}
}

// NewConfig loads the chat settings from the environment, falling back
// to defaults for anything unset.
func NewConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CHAT_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopK = n
		}
	}
	if v := os.Getenv("CHAT_MIN_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			cfg.MinScore = float32(f)
		}
	}
	if v := os.Getenv("CHAT_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := os.Getenv("CHAT_MAX_CONTENT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxContentLength = n
		}
	}

	return cfg
}
