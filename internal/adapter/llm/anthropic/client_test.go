package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/github-analytics/internal/adapter/llm/anthropic"
	llmhttp "github.com/davidmanzanoai/github-analytics/internal/adapter/llm/http"
)

func successBody(text string) anthropic.MessagesResponse {
	return anthropic.MessagesResponse{
		ID:         "msg_01",
		Type:       "message",
		Role:       "assistant",
		Content:    []anthropic.ContentBlock{{Type: "text", Text: text}},
		Model:      "claude-sonnet-4-20250514",
		StopReason: "end_turn",
		Usage:      anthropic.Usage{InputTokens: 120, OutputTokens: 45},
	}
}

func TestCallSendsHeadersAndBody(t *testing.T) {
	var captured anthropic.MessagesRequest
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(successBody("A demo repo."))
	}))
	defer server.Close()

	client := anthropic.NewHTTPClient("test-key", "claude-sonnet-4-20250514")
	client.SetBaseURL(server.URL + "/")

	resp, err := client.Call(context.Background(), []anthropic.Message{
		{Role: "user", Content: "summarize"},
		{Role: "assistant", Content: "A demo repo."},
		{Role: "user", Content: "languages used?"},
	}, anthropic.CallOptions{System: "repo context", MaxTokens: 4096})

	require.NoError(t, err)
	assert.Equal(t, 1, requests, "exactly one HTTP request per call")
	assert.Equal(t, "A demo repo.", resp.Text)
	assert.Equal(t, 120, resp.TokensIn)
	assert.Equal(t, 45, resp.TokensOut)

	assert.Equal(t, "claude-sonnet-4-20250514", captured.Model)
	assert.Equal(t, "repo context", captured.System)
	assert.Equal(t, 4096, captured.MaxTokens)
	require.Len(t, captured.Messages, 3)
	assert.Equal(t, anthropic.Message{Role: "user", Content: "summarize"}, captured.Messages[0])
	assert.Equal(t, anthropic.Message{Role: "assistant", Content: "A demo repo."}, captured.Messages[1])
	assert.Equal(t, anthropic.Message{Role: "user", Content: "languages used?"}, captured.Messages[2])
}

func TestCallJoinsTextContentBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := successBody("")
		body.Content = []anthropic.ContentBlock{
			{Type: "text", Text: "part one "},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "part two"},
		}
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client := anthropic.NewHTTPClient("k", "m")
	client.SetBaseURL(server.URL)

	resp, err := client.Call(context.Background(), []anthropic.Message{{Role: "user", Content: "q"}}, anthropic.CallOptions{MaxTokens: 10})

	require.NoError(t, err)
	assert.Equal(t, "part one part two", resp.Text)
}

func TestCallErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		wantType   llmhttp.ErrorType
		retryable  bool
	}{
		{"unauthorized", http.StatusUnauthorized, llmhttp.ErrTypeAuthentication, false},
		{"forbidden", http.StatusForbidden, llmhttp.ErrTypeAuthentication, false},
		{"rate limited", http.StatusTooManyRequests, llmhttp.ErrTypeRateLimit, true},
		{"bad request", http.StatusBadRequest, llmhttp.ErrTypeInvalidRequest, false},
		{"overloaded", 529, llmhttp.ErrTypeServiceUnavailable, true},
		{"internal error", http.StatusInternalServerError, llmhttp.ErrTypeServiceUnavailable, true},
		{"teapot", http.StatusTeapot, llmhttp.ErrTypeUnknown, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			requests := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests++
				w.WriteHeader(tc.statusCode)
				json.NewEncoder(w).Encode(anthropic.ErrorResponse{
					Type:  "error",
					Error: anthropic.ErrorDetail{Type: "api_error", Message: "upstream says no"},
				})
			}))
			defer server.Close()

			client := anthropic.NewHTTPClient("k", "m")
			client.SetBaseURL(server.URL)

			_, err := client.Call(context.Background(), []anthropic.Message{{Role: "user", Content: "q"}}, anthropic.CallOptions{MaxTokens: 10})

			var typed *llmhttp.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tc.wantType, typed.Type)
			assert.Equal(t, tc.retryable, typed.Retryable)
			assert.Equal(t, "anthropic", typed.Service)
			assert.Contains(t, typed.Message, "upstream says no")
			assert.Equal(t, 1, requests, "failures are not retried")
		})
	}
}

func TestCallCanceledContextReturnsTimeoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(successBody("late"))
	}))
	defer server.Close()

	client := anthropic.NewHTTPClient("k", "m")
	client.SetBaseURL(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Call(ctx, []anthropic.Message{{Role: "user", Content: "q"}}, anthropic.CallOptions{MaxTokens: 10})

	var typed *llmhttp.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, llmhttp.ErrTypeTimeout, typed.Type)
}

func TestCallEmptyContentIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := successBody("")
		body.Content = nil
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client := anthropic.NewHTTPClient("k", "m")
	client.SetBaseURL(server.URL)

	_, err := client.Call(context.Background(), []anthropic.Message{{Role: "user", Content: "q"}}, anthropic.CallOptions{MaxTokens: 10})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestCallRecordsMetricsAndCost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(successBody("ok"))
	}))
	defer server.Close()

	metrics := llmhttp.NewDefaultMetrics()
	client := anthropic.NewHTTPClient("k", "claude-sonnet-4-20250514")
	client.SetBaseURL(server.URL)
	client.SetObservability(nil, metrics, llmhttp.NewDefaultPricing())

	_, err := client.Call(context.Background(), []anthropic.Message{{Role: "user", Content: "q"}}, anthropic.CallOptions{MaxTokens: 10})
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, 1, stats.TotalRequests)
	assert.Equal(t, 120, stats.TotalTokensIn)
	assert.Equal(t, 45, stats.TotalTokensOut)
	assert.Greater(t, stats.TotalCost, 0.0)
}

func TestCallTransportFailure(t *testing.T) {
	client := anthropic.NewHTTPClient("k", "m")
	client.SetBaseURL("http://127.0.0.1:1") // nothing listens here

	_, err := client.Call(context.Background(), []anthropic.Message{{Role: "user", Content: "q"}}, anthropic.CallOptions{MaxTokens: 10})

	var typed *llmhttp.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, llmhttp.ErrTypeTimeout, typed.Type)
}
