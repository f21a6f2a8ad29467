package anthropic_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/github-analytics/internal/adapter/llm/anthropic"
	"github.com/davidmanzanoai/github-analytics/internal/domain"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/answer"
)

type callStub struct {
	messages []anthropic.Message
	options  anthropic.CallOptions
	response *anthropic.APIResponse
	err      error
}

func (c *callStub) Call(ctx context.Context, messages []anthropic.Message, options anthropic.CallOptions) (*anthropic.APIResponse, error) {
	c.messages = messages
	c.options = options
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

func TestProviderMapsTranscriptToMessages(t *testing.T) {
	stub := &callStub{response: &anthropic.APIResponse{
		Text:      "Mostly Go.",
		Model:     "claude-sonnet-4-20250514",
		TokensIn:  300,
		TokensOut: 20,
	}}
	provider := anthropic.NewProvider(stub, 4096, 0.2)

	got, err := provider.Answer(context.Background(), answer.ModelRequest{
		System: "repo context",
		Transcript: domain.Transcript{
			{Role: domain.RoleUser, Text: "summarize"},
			{Role: domain.RoleAssistant, Text: "A demo repo."},
			{Role: domain.RoleUser, Text: "languages used?"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Mostly Go.", got.Text)
	assert.Equal(t, "claude-sonnet-4-20250514", got.Model)
	assert.Equal(t, domain.TokenUsage{InputTokens: 300, OutputTokens: 20}, got.Usage)

	require.Len(t, stub.messages, 3)
	assert.Equal(t, "user", stub.messages[0].Role)
	assert.Equal(t, "assistant", stub.messages[1].Role)
	assert.Equal(t, "languages used?", stub.messages[2].Content)

	assert.Equal(t, "repo context", stub.options.System)
	assert.Equal(t, 4096, stub.options.MaxTokens)
	assert.InDelta(t, 0.2, stub.options.Temperature, 0.0001)
}

func TestProviderPropagatesClientErrors(t *testing.T) {
	boom := errors.New("overloaded")
	provider := anthropic.NewProvider(&callStub{err: boom}, 4096, 0)

	_, err := provider.Answer(context.Background(), answer.ModelRequest{
		Transcript: domain.Transcript{{Role: domain.RoleUser, Text: "q"}},
	})

	require.ErrorIs(t, err, boom)
}

func TestProviderRequiresClient(t *testing.T) {
	provider := anthropic.NewProvider(nil, 4096, 0)

	_, err := provider.Answer(context.Background(), answer.ModelRequest{
		Transcript: domain.Transcript{{Role: domain.RoleUser, Text: "q"}},
	})

	require.Error(t, err)
}
