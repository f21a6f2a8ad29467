// Package answer implements the answering service behind the session port:
// it assembles the repository context into a system prompt and forwards the
// transcript to the model client.
package answer

import (
	"context"
	"fmt"
	"sync"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
)

// basePrompt is the system prompt used when no repository context applies.
const basePrompt = `You are an expert analyst of GitHub code repositories.

Answer questions clearly, concisely, and grounded in data. Provide specific
statistics, concrete names, and detailed analysis where possible. If you need
information that is not available, say so clearly.`

// ModelRequest is the outbound payload for the model client: the rendered
// system prompt plus the conversation so far.
type ModelRequest struct {
	System     string
	Transcript domain.Transcript
}

// ModelClient abstracts the hosted model API.
type ModelClient interface {
	Answer(ctx context.Context, req ModelRequest) (domain.Answer, error)
}

// ContextProvider renders the repository context system prompt.
type ContextProvider interface {
	SystemPrompt(ctx context.Context, repo domain.RepositoryIdentity) (string, error)
}

// Logger receives informational events about context assembly.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Service implements the session Answerer port. Repository context is built
// once per owner/name and cached for the life of the process, so follow-up
// questions in a conversation do not refetch repository data.
type Service struct {
	client   ModelClient
	contexts ContextProvider
	logger   Logger

	// The service may be shared between sessions; the cache map needs a
	// lock even though individual sessions are synchronous.
	mu    sync.Mutex
	cache map[string]string
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger attaches a logger for context assembly events.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService constructs an answering service. contexts may be nil, in which
// case every call uses the base system prompt.
func NewService(client ModelClient, contexts ContextProvider, opts ...Option) *Service {
	s := &Service{
		client:   client,
		contexts: contexts,
		cache:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer forwards the transcript to the model with the repository context as
// the system prompt. A single attempt is made; failures surface immediately.
func (s *Service) Answer(ctx context.Context, req domain.AnswerRequest) (domain.Answer, error) {
	system := basePrompt
	if req.Repository != nil && s.contexts != nil {
		rendered, err := s.repositoryPrompt(ctx, *req.Repository)
		if err != nil {
			return domain.Answer{}, fmt.Errorf("build repository context for %s: %w", req.Repository.FullName(), err)
		}
		system = rendered
	}

	return s.client.Answer(ctx, ModelRequest{
		System:     system,
		Transcript: req.Transcript,
	})
}

func (s *Service) repositoryPrompt(ctx context.Context, repo domain.RepositoryIdentity) (string, error) {
	key := repo.FullName()

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	rendered, err := s.contexts.SystemPrompt(ctx, repo)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[key] = rendered
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.LogInfo(ctx, "repository context built", map[string]interface{}{
			"repository":   key,
			"prompt_chars": len(rendered),
		})
	}

	return rendered, nil
}
