package anthropic

import (
	"context"
	"fmt"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/answer"
)

// Client abstracts the HTTP client behaviour the provider needs.
type Client interface {
	Call(ctx context.Context, messages []Message, options CallOptions) (*APIResponse, error)
}

// Provider implements the answer.ModelClient port on top of the Messages
// API client.
type Provider struct {
	client      Client
	maxTokens   int
	temperature float64
}

// NewProvider constructs a Provider.
func NewProvider(client Client, maxTokens int, temperature float64) *Provider {
	return &Provider{
		client:      client,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Answer replays the transcript to the model and translates the response.
func (p *Provider) Answer(ctx context.Context, req answer.ModelRequest) (domain.Answer, error) {
	if p.client == nil {
		return domain.Answer{}, fmt.Errorf("anthropic client missing")
	}

	messages := make([]Message, 0, len(req.Transcript))
	for _, turn := range req.Transcript {
		messages = append(messages, Message{
			Role:    string(turn.Role),
			Content: turn.Text,
		})
	}

	resp, err := p.client.Call(ctx, messages, CallOptions{
		System:      req.System,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return domain.Answer{}, err
	}

	return domain.Answer{
		Text:  resp.Text,
		Model: resp.Model,
		Usage: domain.TokenUsage{
			InputTokens:  resp.TokensIn,
			OutputTokens: resp.TokensOut,
		},
	}, nil
}
