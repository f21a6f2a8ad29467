package observability

import (
	"context"

	llmhttp "github.com/davidmanzanoai/github-analytics/internal/adapter/llm/http"
)

// SessionLogger adapts llmhttp.Logger to the usecase logger interfaces.
// The session manager and the answering service share one structured
// logging pipeline with the HTTP clients this way.
type SessionLogger struct {
	logger llmhttp.Logger
}

// NewSessionLogger creates a new usecase logger adapter.
func NewSessionLogger(logger llmhttp.Logger) *SessionLogger {
	return &SessionLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *SessionLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *SessionLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
