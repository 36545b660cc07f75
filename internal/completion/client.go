package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPProvider implements Provider against an OpenAI-compatible
// /chat/completions endpoint.
type HTTPProvider struct {
	cfg        *Config
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*HTTPProvider)(nil)

// NewHTTPProvider constructs the provider and validates its config.
func NewHTTPProvider(cfg *Config) (*HTTPProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &HTTPProvider{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
		// No client-level timeout: the per-call deadline governs, so a
		// caller-supplied shorter context still wins.
		httpClient: &http.Client{},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends one fully assembled prompt to the upstream model and
// returns the generated answer. The call is bounded by the configured
// timeout; an expired deadline surfaces as ErrTimeout. The provider
// itself never retries.
func (p *HTTPProvider) Complete(ctx context.Context, prompt string, modelID string) (*Result, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", ErrMalformedResponse)
	}
	if modelID == "" {
		modelID = p.cfg.DefaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       modelID,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("completion: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, p.cfg.Timeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: http 429", ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: http %d", ErrUpstream, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	tokens := 0
	if parsed.Usage != nil && parsed.Usage.TotalTokens > 0 {
		tokens = parsed.Usage.TotalTokens
	} else {
		// Upstream omitted usage data; estimate from the answer.
		tokens = EstimateTokens(text)
	}

	return &Result{
		Text:       text,
		Model:      modelID,
		TokensUsed: tokens,
		LatencyMS:  latency.Milliseconds(),
	}, nil
}
