package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeAnalyze(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		resp := map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": "vendor: Apple Store\ntotal: 1,099.00\ntax: unknown\ndate: 2024-09-20"},
			},
			"usage": map[string]any{"input_tokens": 10, "output_tokens": 20},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	analyzer := NewClaudeAnalyzer("sk-test", "claude-test", anthropic.WithBaseURL(server.URL))

	ex, err := analyzer.Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, ex.Vendor)
	assert.Equal(t, "Apple Store", *ex.Vendor)
	assert.Equal(t, "1099", ex.Total.Decimal.String())
	assert.False(t, ex.TaxAmount.Valid)
	assert.Equal(t, 0.75, ex.Confidence)

	assert.Equal(t, "sk-test", gotKey)
	assert.Equal(t, "claude-test", gotBody["model"])
}

func TestClaudeAnalyzeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer server.Close()

	analyzer := NewClaudeAnalyzer("sk-test", "claude-test", anthropic.WithBaseURL(server.URL))

	_, err := analyzer.Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.Error(t, err)
}

func TestClaudeAnalyzeReadError(t *testing.T) {
	analyzer := NewClaudeAnalyzer("sk-test", "claude-test")

	_, err := analyzer.Analyze(context.Background(), &errReader{}, "image/jpeg")
	assert.Error(t, err)
}

func TestNormaliseMIME(t *testing.T) {
	assert.Equal(t, "image/png", normaliseMIME("image/png"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/heic"))
}

// errReader always returns an error on Read.
type errReader struct{}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
