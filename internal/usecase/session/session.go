// Package session implements the conversation core: a session owns the
// transcript of exchanged turns for one target repository and routes each
// question to the answering service with the right amount of context.
package session

import (
	"context"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
)

// Answerer is the answering service port. It receives the full transcript,
// ending with the new user turn, plus the repository the session targets,
// and returns the model's reply. Implementations own context assembly and
// transport; the session treats the call as an opaque function.
type Answerer interface {
	Answer(ctx context.Context, req domain.AnswerRequest) (domain.Answer, error)
}

// Recorder observes completed exchanges for persistence. Recorder failures
// never affect an operation's result; the session logs them and moves on.
type Recorder interface {
	SessionStarted(ctx context.Context, repo domain.RepositoryIdentity) error
	TurnsAppended(ctx context.Context, turns []domain.Turn) error
}

// Logger receives non-fatal session events.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Session holds the conversation state for a single caller. Construct one
// per conversation; independent sessions never share a transcript. A session
// is not safe for concurrent use: callers serialize their own requests.
type Session struct {
	answerer   Answerer
	recorder   Recorder
	logger     Logger
	repo       *domain.RepositoryIdentity
	transcript domain.Transcript
}

// Option configures optional session collaborators.
type Option func(*Session)

// WithRecorder attaches a history recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger attaches a logger for non-fatal events.
func WithLogger(l Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New constructs a session around the given answering service.
func New(answerer Answerer, opts ...Option) *Session {
	s := &Session{answerer: answerer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuickQuestion asks a single question about a repository without touching
// the session state. The answering service sees a one-turn transcript.
func (s *Session) QuickQuestion(ctx context.Context, repo domain.RepositoryIdentity, question string) (string, error) {
	answer, err := s.answerer.Answer(ctx, domain.AnswerRequest{
		Transcript: domain.Transcript{{Role: domain.RoleUser, Text: question}},
		Repository: &repo,
	})
	if err != nil {
		return "", &domain.ExternalServiceError{Service: "answering service", Err: err}
	}
	return answer.Text, nil
}

// StartAnalysis begins a new conversation about repo, discarding any prior
// transcript. The question becomes the first user turn and the reply the
// first assistant turn.
func (s *Session) StartAnalysis(ctx context.Context, repo domain.RepositoryIdentity, question string) (string, error) {
	s.repo = &repo
	s.transcript = domain.Transcript{{Role: domain.RoleUser, Text: question}}

	if s.recorder != nil {
		if err := s.recorder.SessionStarted(ctx, repo); err != nil {
			s.warn(ctx, "session recording unavailable", map[string]interface{}{
				"repository": repo.FullName(),
				"error":      err.Error(),
			})
		}
	}

	return s.ask(ctx)
}

// ContinueConversation asks a follow-up question in the current analysis.
// It fails with domain.ErrNoActiveSession when no analysis has been started.
func (s *Session) ContinueConversation(ctx context.Context, question string) (string, error) {
	if s.repo == nil {
		return "", domain.ErrNoActiveSession
	}
	s.transcript = append(s.transcript, domain.Turn{Role: domain.RoleUser, Text: question})
	return s.ask(ctx)
}

// ask replays the accumulated transcript to the answering service and
// appends the reply. On failure the already-appended user turn remains and
// the session stays active; nothing retries.
func (s *Session) ask(ctx context.Context) (string, error) {
	answer, err := s.answerer.Answer(ctx, domain.AnswerRequest{
		Transcript: s.transcript.Clone(),
		Repository: s.repo,
	})
	if err != nil {
		return "", &domain.ExternalServiceError{Service: "answering service", Err: err}
	}

	userTurn := s.transcript[len(s.transcript)-1]
	assistantTurn := domain.Turn{Role: domain.RoleAssistant, Text: answer.Text}
	s.transcript = append(s.transcript, assistantTurn)

	if s.recorder != nil {
		if err := s.recorder.TurnsAppended(ctx, []domain.Turn{userTurn, assistantTurn}); err != nil {
			s.warn(ctx, "turn recording failed", map[string]interface{}{
				"repository": s.repo.FullName(),
				"error":      err.Error(),
			})
		}
	}

	return answer.Text, nil
}

// Active reports whether an analysis has been started.
func (s *Session) Active() bool {
	return s.repo != nil
}

// Repository returns the repository the session targets, or nil before any
// analysis has been started.
func (s *Session) Repository() *domain.RepositoryIdentity {
	if s.repo == nil {
		return nil
	}
	repo := *s.repo
	return &repo
}

// Transcript returns a copy of the accumulated transcript.
func (s *Session) Transcript() domain.Transcript {
	return s.transcript.Clone()
}

func (s *Session) warn(ctx context.Context, message string, fields map[string]interface{}) {
	if s.logger == nil {
		return
	}
	s.logger.LogWarning(ctx, message, fields)
}
