package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/session"
)

type answererStub struct {
	requests []domain.AnswerRequest
	answers  []string
	err      error
}

func (a *answererStub) Answer(ctx context.Context, req domain.AnswerRequest) (domain.Answer, error) {
	a.requests = append(a.requests, req)
	if a.err != nil {
		return domain.Answer{}, a.err
	}
	text := "ok"
	if len(a.answers) > 0 {
		text = a.answers[0]
		a.answers = a.answers[1:]
	}
	return domain.Answer{Text: text}, nil
}

type recorderStub struct {
	started  []domain.RepositoryIdentity
	appended [][]domain.Turn
	err      error
}

func (r *recorderStub) SessionStarted(ctx context.Context, repo domain.RepositoryIdentity) error {
	r.started = append(r.started, repo)
	return r.err
}

func (r *recorderStub) TurnsAppended(ctx context.Context, turns []domain.Turn) error {
	r.appended = append(r.appended, turns)
	return r.err
}

type loggerStub struct {
	warnings []string
}

func (l *loggerStub) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {}

func (l *loggerStub) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, message)
}

var demoRepo = domain.RepositoryIdentity{Owner: "octocat", Name: "hello-world"}

func TestStartAnalysisAppendsBothTurns(t *testing.T) {
	answerer := &answererStub{answers: []string{"A demo repo."}}
	s := session.New(answerer)

	text, err := s.StartAnalysis(context.Background(), demoRepo, "summarize")

	require.NoError(t, err)
	assert.Equal(t, "A demo repo.", text)
	assert.Equal(t, domain.Transcript{
		{Role: domain.RoleUser, Text: "summarize"},
		{Role: domain.RoleAssistant, Text: "A demo repo."},
	}, s.Transcript())

	require.Len(t, answerer.requests, 1)
	require.NotNil(t, answerer.requests[0].Repository)
	assert.Equal(t, demoRepo, *answerer.requests[0].Repository)
	assert.Equal(t, domain.Transcript{{Role: domain.RoleUser, Text: "summarize"}}, answerer.requests[0].Transcript)
}

func TestContinueConversationReplaysFullTranscript(t *testing.T) {
	answerer := &answererStub{answers: []string{"A demo repo.", "Mostly Go."}}
	s := session.New(answerer)

	_, err := s.StartAnalysis(context.Background(), demoRepo, "summarize")
	require.NoError(t, err)

	text, err := s.ContinueConversation(context.Background(), "languages used?")
	require.NoError(t, err)
	assert.Equal(t, "Mostly Go.", text)

	require.Len(t, answerer.requests, 2)
	sent := answerer.requests[1].Transcript
	require.Len(t, sent, 3)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Text: "summarize"}, sent[0])
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Text: "A demo repo."}, sent[1])
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Text: "languages used?"}, sent[2])
}

func TestContinueConversationWithoutAnalysisFails(t *testing.T) {
	s := session.New(&answererStub{})

	_, err := s.ContinueConversation(context.Background(), "anything")

	require.ErrorIs(t, err, domain.ErrNoActiveSession)
	assert.False(t, s.Active())
}

func TestQuickQuestionDoesNotTouchSessionState(t *testing.T) {
	answerer := &answererStub{answers: []string{"quick", "started"}}
	s := session.New(answerer)

	_, err := s.QuickQuestion(context.Background(), demoRepo, "what is this?")
	require.NoError(t, err)

	assert.False(t, s.Active())
	assert.Empty(t, s.Transcript())
	assert.Nil(t, s.Repository())

	// A later analysis starts from a clean transcript.
	_, err = s.StartAnalysis(context.Background(), demoRepo, "summarize")
	require.NoError(t, err)
	require.Len(t, answerer.requests, 2)
	assert.Len(t, answerer.requests[1].Transcript, 1)
}

func TestQuickQuestionSendsSingleTurn(t *testing.T) {
	answerer := &answererStub{}
	s := session.New(answerer)

	_, err := s.QuickQuestion(context.Background(), demoRepo, "what is this?")

	require.NoError(t, err)
	require.Len(t, answerer.requests, 1)
	assert.Equal(t, domain.Transcript{{Role: domain.RoleUser, Text: "what is this?"}}, answerer.requests[0].Transcript)
	require.NotNil(t, answerer.requests[0].Repository)
	assert.Equal(t, demoRepo, *answerer.requests[0].Repository)
}

func TestStartAnalysisDiscardsPriorTranscript(t *testing.T) {
	answerer := &answererStub{}
	s := session.New(answerer)

	_, err := s.StartAnalysis(context.Background(), demoRepo, "summarize")
	require.NoError(t, err)
	_, err = s.ContinueConversation(context.Background(), "follow up")
	require.NoError(t, err)

	other := domain.RepositoryIdentity{Owner: "torvalds", Name: "linux"}
	_, err = s.StartAnalysis(context.Background(), other, "fresh question")
	require.NoError(t, err)

	sent := answerer.requests[len(answerer.requests)-1]
	require.NotNil(t, sent.Repository)
	assert.Equal(t, other, *sent.Repository)
	require.Len(t, sent.Transcript, 1)
	assert.Equal(t, "fresh question", sent.Transcript[0].Text)

	require.Len(t, s.Transcript(), 2)
}

func TestAnswererFailureSurfacesAsExternalServiceError(t *testing.T) {
	boom := errors.New("connection refused")
	answerer := &answererStub{err: boom}
	s := session.New(answerer)

	_, err := s.StartAnalysis(context.Background(), demoRepo, "summarize")

	var svcErr *domain.ExternalServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "answering service", svcErr.Service)
	require.ErrorIs(t, err, boom)

	// The user turn stays and the session remains active; only one attempt
	// was made.
	assert.True(t, s.Active())
	assert.Equal(t, domain.Transcript{{Role: domain.RoleUser, Text: "summarize"}}, s.Transcript())
	assert.Len(t, answerer.requests, 1)
}

func TestIndependentSessionsDoNotShareTranscripts(t *testing.T) {
	answerer := &answererStub{}
	first := session.New(answerer)
	second := session.New(answerer)

	_, err := first.StartAnalysis(context.Background(), demoRepo, "about the first")
	require.NoError(t, err)

	assert.False(t, second.Active())
	assert.Empty(t, second.Transcript())
	assert.Len(t, first.Transcript(), 2)
}

func TestRecorderReceivesSessionAndTurns(t *testing.T) {
	recorder := &recorderStub{}
	s := session.New(&answererStub{answers: []string{"a1", "a2"}}, session.WithRecorder(recorder))

	_, err := s.StartAnalysis(context.Background(), demoRepo, "q1")
	require.NoError(t, err)
	_, err = s.ContinueConversation(context.Background(), "q2")
	require.NoError(t, err)

	require.Len(t, recorder.started, 1)
	assert.Equal(t, demoRepo, recorder.started[0])

	require.Len(t, recorder.appended, 2)
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Text: "q1"},
		{Role: domain.RoleAssistant, Text: "a1"},
	}, recorder.appended[0])
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Text: "q2"},
		{Role: domain.RoleAssistant, Text: "a2"},
	}, recorder.appended[1])
}

func TestRecorderFailureDoesNotAffectAnswer(t *testing.T) {
	recorder := &recorderStub{err: errors.New("disk full")}
	logger := &loggerStub{}
	s := session.New(&answererStub{answers: []string{"fine"}},
		session.WithRecorder(recorder), session.WithLogger(logger))

	text, err := s.StartAnalysis(context.Background(), demoRepo, "q1")

	require.NoError(t, err)
	assert.Equal(t, "fine", text)
	assert.Len(t, s.Transcript(), 2)
	assert.NotEmpty(t, logger.warnings)
}

func TestTranscriptReturnsIndependentCopy(t *testing.T) {
	s := session.New(&answererStub{})
	_, err := s.StartAnalysis(context.Background(), demoRepo, "q1")
	require.NoError(t, err)

	copied := s.Transcript()
	copied[0].Text = "mutated"

	assert.Equal(t, "q1", s.Transcript()[0].Text)
}
