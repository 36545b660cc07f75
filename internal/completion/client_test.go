package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *HTTPProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider(&Config{
		Endpoint:     srv.URL,
		APIKey:       "test-key",
		DefaultModel: "default-model",
		Timeout:      5 * time.Second,
		MaxTokens:    256,
		Temperature:  0.7,
	})
	require.NoError(t, err)
	return p
}

func chatOK(content string, totalTokens int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		if totalTokens > 0 {
			resp["usage"] = map[string]any{"total_tokens": totalTokens}
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody chatRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		chatOK("La risposta.", 42)(w, r)
	})

	res, err := p.Complete(context.Background(), "domanda", "my-model")
	require.NoError(t, err)

	assert.Equal(t, "my-model", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "domanda", gotBody.Messages[0].Content)

	assert.Equal(t, "La risposta.", res.Text)
	assert.Equal(t, 42, res.TokensUsed)
	assert.GreaterOrEqual(t, res.LatencyMS, int64(0))
}

func TestCompleteUsesDefaultModel(t *testing.T) {
	var gotBody chatRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		chatOK("ok", 1)(w, r)
	})

	_, err := p.Complete(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Equal(t, "default-model", gotBody.Model)
}

func TestCompleteEstimatesTokensWhenUsageMissing(t *testing.T) {
	p := newTestProvider(t, chatOK("una risposta di cinque parole", 0))

	res, err := p.Complete(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Equal(t, 6, res.TokensUsed) // 5 words * 1.3 = 6.5 -> 6
}

func TestCompleteRateLimited(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := p.Complete(context.Background(), "x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestCompleteUpstreamError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := p.Complete(context.Background(), "x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider(&Config{
		Endpoint:     srv.URL,
		DefaultModel: "m",
		Timeout:      50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestCompleteMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"no choices", `{"choices":[]}`},
		{"empty content", `{"choices":[{"message":{"content":"  "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := p.Complete(context.Background(), "x", "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
		})
	}
}

func TestCompleteNoSilentRetries(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, _ = p.Complete(context.Background(), "x", "")
	assert.Equal(t, 1, calls, "the provider must make exactly one upstream call")
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("ciao"))            // 1 * 1.3 -> 1
	assert.Equal(t, 13, EstimateTokens(repeatWords(10)))  // 10 * 1.3 -> 13
	assert.Equal(t, 130, EstimateTokens(repeatWords(100)))
}

func repeatWords(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "parola "
	}
	return s
}
