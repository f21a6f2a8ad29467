// Package anthropic is the transport for the Anthropic Messages API. It
// replays the session transcript as the message list and returns the text
// content blocks of the reply.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/davidmanzanoai/github-analytics/internal/adapter/llm/http"
)

const (
	defaultBaseURL          = "https://api.anthropic.com"
	defaultTimeout          = 60 * time.Second
	defaultAnthropicVersion = "2023-06-01"

	serviceName = "anthropic"
)

// HTTPClient is an HTTP client for the Anthropic Messages API. Each call is
// a single attempt; failures are never retried here.
type HTTPClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client

	logger  llmhttp.Logger
	metrics llmhttp.Metrics
	pricing llmhttp.Pricing
}

// NewHTTPClient creates a new Anthropic HTTP client.
func NewHTTPClient(apiKey, model string) *HTTPClient {
	return &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing or a proxy).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetTimeout sets the HTTP timeout.
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetObservability wires optional logging, metrics, and pricing. Any of the
// arguments may be nil.
func (c *HTTPClient) SetObservability(logger llmhttp.Logger, metrics llmhttp.Metrics, pricing llmhttp.Pricing) {
	c.logger = logger
	c.metrics = metrics
	c.pricing = pricing
}

// CallOptions contains per-call options for the API request.
type CallOptions struct {
	System      string
	MaxTokens   int
	Temperature float64
}

// APIResponse is the parsed result of a Messages API call.
type APIResponse struct {
	Text       string
	TokensIn   int
	TokensOut  int
	Model      string
	StopReason string
}

// Call posts the message list to the Messages API and parses the reply.
func (c *HTTPClient) Call(ctx context.Context, messages []Message, options CallOptions) (*APIResponse, error) {
	reqBody := MessagesRequest{
		Model:     c.model,
		Messages:  messages,
		System:    options.System,
		MaxTokens: options.MaxTokens,
	}
	if options.Temperature > 0 {
		reqBody.Temperature = options.Temperature
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, &llmhttp.Error{
			Type:      llmhttp.ErrTypeUnknown,
			Message:   err.Error(),
			Retryable: false,
			Service:   serviceName,
		}
	}

	// Anthropic uses x-api-key instead of Authorization.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", defaultAnthropicVersion)

	start := time.Now()
	c.logRequest(ctx, messages, options)
	if c.metrics != nil {
		c.metrics.RecordRequest(serviceName)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		mapped := transportError(ctx, err)
		c.observeError(ctx, mapped, time.Since(start))
		return nil, mapped
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		mapped := mapErrorResponse(resp.StatusCode, bodyBytes)
		c.observeError(ctx, mapped, time.Since(start))
		return nil, mapped
	}

	var messagesResp MessagesResponse
	if err := json.Unmarshal(bodyBytes, &messagesResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var textParts []string
	for _, block := range messagesResp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	if len(textParts) == 0 {
		return nil, &llmhttp.Error{
			Type:      llmhttp.ErrTypeUnknown,
			Message:   "no text content in response",
			Retryable: false,
			Service:   serviceName,
		}
	}

	result := &APIResponse{
		Text:       strings.Join(textParts, ""),
		TokensIn:   messagesResp.Usage.InputTokens,
		TokensOut:  messagesResp.Usage.OutputTokens,
		Model:      messagesResp.Model,
		StopReason: messagesResp.StopReason,
	}
	c.logResponse(ctx, result, resp.StatusCode, time.Since(start))

	return result, nil
}

func (c *HTTPClient) logRequest(ctx context.Context, messages []Message, options CallOptions) {
	if c.logger == nil {
		return
	}
	promptChars := len(options.System)
	for _, m := range messages {
		promptChars += len(m.Content)
	}
	c.logger.LogRequest(ctx, llmhttp.RequestLog{
		Service:     serviceName,
		Model:       c.model,
		Timestamp:   time.Now(),
		PromptChars: promptChars,
		APIKey:      c.apiKey,
	})
}

func (c *HTTPClient) logResponse(ctx context.Context, resp *APIResponse, statusCode int, duration time.Duration) {
	cost := 0.0
	if c.pricing != nil {
		cost = c.pricing.GetCost(serviceName, c.model, resp.TokensIn, resp.TokensOut)
	}
	if c.metrics != nil {
		c.metrics.RecordDuration(serviceName, duration)
		c.metrics.RecordTokens(serviceName, resp.TokensIn, resp.TokensOut)
		c.metrics.RecordCost(serviceName, cost)
	}
	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Service:      serviceName,
			Model:        c.model,
			Timestamp:    time.Now(),
			Duration:     duration,
			TokensIn:     resp.TokensIn,
			TokensOut:    resp.TokensOut,
			Cost:         cost,
			StatusCode:   statusCode,
			FinishReason: resp.StopReason,
		})
	}
}

func (c *HTTPClient) observeError(ctx context.Context, err *llmhttp.Error, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordDuration(serviceName, duration)
		c.metrics.RecordError(serviceName, err.Type)
	}
	if c.logger != nil {
		c.logger.LogError(ctx, llmhttp.ErrorLog{
			Service:    serviceName,
			Model:      c.model,
			Timestamp:  time.Now(),
			Duration:   duration,
			Error:      err,
			ErrorType:  err.Type,
			StatusCode: err.StatusCode,
			Retryable:  err.Retryable,
		})
	}
}

// transportError maps client transport failures; a canceled or expired
// context becomes a timeout-typed error.
func transportError(ctx context.Context, err error) *llmhttp.Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llmhttp.NewTimeoutError(serviceName, err.Error())
	}
	return &llmhttp.Error{
		Type:      llmhttp.ErrTypeTimeout,
		Message:   err.Error(),
		Retryable: true,
		Service:   serviceName,
	}
}

// mapErrorResponse maps HTTP status codes to typed errors, using the message
// from Anthropic's error envelope when present.
func mapErrorResponse(statusCode int, body []byte) *llmhttp.Error {
	message := fmt.Sprintf("HTTP %d", statusCode)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeAuthentication,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Service:    serviceName,
		}
	case http.StatusTooManyRequests:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeRateLimit,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Service:    serviceName,
		}
	case http.StatusBadRequest:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeInvalidRequest,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Service:    serviceName,
		}
	case 529: // Anthropic-specific: overloaded
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Service:    serviceName,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Service:    serviceName,
		}
	default:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Service:    serviceName,
		}
	}
}
