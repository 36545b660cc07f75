package chat

import (
	"errors"
	"fmt"
)

// ReasonCode labels why a turn failed. Codes are stable identifiers
// consumed by the HTTP layer and by clients; the wrapped error carries
// the internals for the logs.
type ReasonCode string

const (
	ReasonValidation        ReasonCode = "validation_error"
	ReasonQuotaExceeded     ReasonCode = "quota_exceeded"
	ReasonNotFound          ReasonCode = "not_found"
	ReasonRetrievalError    ReasonCode = "retrieval_error"
	ReasonTimeout           ReasonCode = "timeout"
	ReasonRateLimited       ReasonCode = "rate_limited"
	ReasonUpstreamError     ReasonCode = "upstream_error"
	ReasonMalformedResponse ReasonCode = "malformed_response"
	ReasonPersistenceError  ReasonCode = "persistence_error"
	ReasonInternal          ReasonCode = "internal_error"
)

// Sentinel errors for the common lookup failures.
var (
	ErrProjectNotFound = errors.New("chat: project not found")
	ErrUserNotFound    = errors.New("chat: user not found")
	ErrUserInactive    = errors.New("chat: user is not active")
)

// TurnError is the failure outcome of a message turn.
type TurnError struct {
	Reason ReasonCode
	Err    error
}

// Error implements the error interface.
func (e *TurnError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As.
func (e *TurnError) Unwrap() error { return e.Err }

func newTurnError(reason ReasonCode, err error) *TurnError {
	return &TurnError{Reason: reason, Err: err}
}

// ReasonOf extracts the reason code of a turn error, falling back to
// internal_error for anything unlabelled.
func ReasonOf(err error) ReasonCode {
	var te *TurnError
	if errors.As(err, &te) {
		return te.Reason
	}
	return ReasonInternal
}
