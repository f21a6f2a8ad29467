// Package llm provides model provider adapters.
package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
)

var (
	defaultEncoder *tiktoken.Tiktoken
	encoderOnce    sync.Once
	encoderErr     error
)

// getEncoder returns the shared tiktoken encoder, initializing it lazily.
// Uses cl100k_base encoding, which is a reasonable approximation for
// Claude's tokenizer.
func getEncoder() (*tiktoken.Tiktoken, error) {
	encoderOnce.Do(func() {
		defaultEncoder, encoderErr = tiktoken.GetEncoding("cl100k_base")
	})
	return defaultEncoder, encoderErr
}

// EstimateTokens returns an estimated token count for the given text
// using the cl100k_base encoding.
func EstimateTokens(text string) int {
	enc, err := getEncoder()
	if err != nil {
		// Fallback to character-based estimate if tiktoken fails
		return len(text) / 4
	}
	tokens := enc.Encode(text, nil, nil)
	return len(tokens)
}

// EstimateTranscriptTokens returns an estimated token count for a whole
// conversation transcript. Transcripts grow without bound across a chat
// session, so callers surface this number to make the context size visible
// before it hits provider limits.
func EstimateTranscriptTokens(t domain.Transcript) int {
	total := 0
	for _, turn := range t {
		total += EstimateTokens(turn.Text)
	}
	return total
}
