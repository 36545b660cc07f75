package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable marks transport failures and upstream 5xx responses so
// callers can classify them as retrievable infrastructure errors.
var ErrUnavailable = errors.New("embedding: service unavailable")

// Provider contract
type Provider interface {
	// Embed generates one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
