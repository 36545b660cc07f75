// Package completion calls an OpenAI-compatible chat completions
// endpoint and maps its failure modes onto a small sentinel taxonomy
// (ErrTimeout, ErrRateLimited, ErrUpstream, ErrMalformedResponse).
//
// The provider performs exactly one upstream call per Complete: retry
// and backoff policy is owned by the chat session manager, which knows
// which failures are worth retrying for a given turn.
package completion
