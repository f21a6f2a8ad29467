package http_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davidmanzanoai/github-analytics/internal/adapter/llm/http"
)

func TestTruncateForLogging_ShortResponse(t *testing.T) {
	short := "This is a short response"
	result := http.TruncateForLogging(short)
	assert.Equal(t, short, result, "Short responses should not be truncated")
}

func TestTruncateForLogging_ExactlyMaxLength(t *testing.T) {
	exact := strings.Repeat("a", http.MaxLoggedResponseLength)
	result := http.TruncateForLogging(exact)
	assert.Equal(t, exact, result, "Response exactly at max length should not be truncated")
}

func TestTruncateForLogging_LongResponse(t *testing.T) {
	long := strings.Repeat("a", 500)
	result := http.TruncateForLogging(long)

	assert.True(t, len(result) < len(long), "Long response should be truncated")
	assert.Contains(t, result, "truncated", "Truncated response should indicate truncation")
	assert.Contains(t, result, "500", "Truncated response should report the original length")
	assert.True(t, strings.HasPrefix(result, long[:100]),
		"Truncated response should start with original content")
}

func TestTruncateForLogging_EmptyString(t *testing.T) {
	result := http.TruncateForLogging("")
	assert.Equal(t, "", result, "Empty string should remain empty")
}

func TestTruncateForLogging_PreventsSensitiveDataLeakage(t *testing.T) {
	// Simulate a response body with potential secrets beyond the cutoff.
	sensitiveResponse := `{"summary": "analysis of repository"}` +
		strings.Repeat("\nMore data...", 100) +
		`{"apiKey": "sk-ant-REDACTED"}`

	result := http.TruncateForLogging(sensitiveResponse)

	assert.True(t, len(result) <= http.MaxLoggedResponseLength+100,
		"Should truncate to safe length")
	assert.NotContains(t, result, "sk-ant-REDACTED",
		"Should not log secrets beyond the truncation point")
}

func TestRedactURLSecrets_APIKey(t *testing.T) {
	url := "https://api.example.com/v1/messages?key=sk-ant-REDACTED"
	result := http.RedactURLSecrets(url)

	assert.NotContains(t, result, "sk-ant-REDACTED", "API key should be redacted")
	assert.Contains(t, result, "key=[REDACTED]", "Should show that key parameter was redacted")
	assert.Contains(t, result, "api.example.com", "Domain should still be visible")
}

func TestRedactURLSecrets_MultipleQueryParams(t *testing.T) {
	url := "https://api.example.com/endpoint?key=secret123&foo=bar&apiKey=secret456"
	result := http.RedactURLSecrets(url)

	assert.NotContains(t, result, "secret123", "key parameter should be redacted")
	assert.NotContains(t, result, "secret456", "apiKey parameter should be redacted")
	assert.Contains(t, result, "foo=bar", "Non-sensitive parameters should remain")
	assert.Contains(t, result, "key=[REDACTED]", "Redacted key should be indicated")
	assert.Contains(t, result, "apiKey=[REDACTED]", "Redacted apiKey should be indicated")
}

func TestRedactURLSecrets_GitHubToken(t *testing.T) {
	errMsg := `Get "https://api.github.com/repos/octocat/hello-world?access_token=ghp_abcdefghijklmnop": dial tcp: timeout`
	result := http.RedactURLSecrets(errMsg)

	assert.NotContains(t, result, "ghp_abcdefghijklmnop", "Token should be redacted")
	assert.Contains(t, result, "access_token=[REDACTED]", "Should show that token was redacted")
	assert.Contains(t, result, "dial tcp: timeout", "Error details should remain")
}

func TestRedactURLSecrets_NoSecrets(t *testing.T) {
	url := "https://api.example.com/endpoint?foo=bar&baz=qux"
	result := http.RedactURLSecrets(url)

	assert.Equal(t, url, result, "URLs without secrets should remain unchanged")
}

func TestRedactURLSecrets_NoQueryString(t *testing.T) {
	url := "https://api.example.com/endpoint"
	result := http.RedactURLSecrets(url)

	assert.Equal(t, url, result, "URLs without query strings should remain unchanged")
}

func TestRedactURLSecrets_EmptyString(t *testing.T) {
	result := http.RedactURLSecrets("")
	assert.Equal(t, "", result, "Empty string should remain empty")
}

func TestRedactURLSecrets_InErrorMessage(t *testing.T) {
	errMsg := `Post "https://api.anthropic.com/v1/messages?api_key=sk-ant-REDACTED": context canceled`
	result := http.RedactURLSecrets(errMsg)

	assert.NotContains(t, result, "sk-ant-REDACTED", "API key should be redacted from error message")
	assert.Contains(t, result, "api_key=[REDACTED]", "Should show that key was redacted")
	assert.Contains(t, result, "context canceled", "Error details should remain")
}
