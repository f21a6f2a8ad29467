package domain

import (
	"errors"
	"fmt"
)

// ErrNoActiveSession is returned when a conversation is continued before any
// analysis has been started in the session.
var ErrNoActiveSession = errors.New("no active session: start an analysis first")

// ConfigurationError reports a missing or unusable credential or setting
// required to reach an external service.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ExternalServiceError wraps a failure from an external collaborator. It is
// the terminal result of the operation that triggered it; nothing retries.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
