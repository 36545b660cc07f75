package completion

import (
	"context"
	"errors"
)

// Failure modes a Provider must distinguish. Callers decide retry policy;
// the provider itself never retries.
var (
	// ErrTimeout means the configured completion deadline elapsed.
	ErrTimeout = errors.New("completion: request timed out")

	// ErrRateLimited means the upstream rejected the request with 429.
	ErrRateLimited = errors.New("completion: rate limited")

	// ErrUpstream covers transport failures and upstream 5xx responses.
	ErrUpstream = errors.New("completion: upstream error")

	// ErrMalformedResponse means the upstream answered 2xx with a payload
	// that does not contain a usable completion.
	ErrMalformedResponse = errors.New("completion: malformed response")
)

// Result is one generated completion.
type Result struct {
	// Text is the generated answer.
	Text string

	// Model is the model that produced the answer, after default
	// resolution.
	Model string

	// TokensUsed is the total token count reported by the upstream, or an
	// estimate when the upstream omits usage data.
	TokensUsed int

	// LatencyMS is the wall-clock duration of the upstream call.
	LatencyMS int64
}

//go:generate mockgen -source=types.go -destination=mock_provider.go -package=completion

// Provider generates completions for fully assembled prompts.
type Provider interface {
	Complete(ctx context.Context, prompt string, modelID string) (*Result, error)
}
