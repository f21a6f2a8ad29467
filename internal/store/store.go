package store

import (
	"context"
	"time"
)

// Store defines the persistence layer interface for session history.
type Store interface {
	// Session management
	SaveSession(ctx context.Context, session SessionRecord) error
	ListSessions(ctx context.Context, limit int) ([]SessionSummary, error)

	// Turn persistence
	AppendTurns(ctx context.Context, sessionID string, turns []TurnRecord) error
	GetTranscript(ctx context.Context, sessionID string) ([]TurnRecord, error)

	// Utility
	Close() error
}

// SessionRecord stores metadata about a conversation session.
type SessionRecord struct {
	ID        string
	Owner     string
	Name      string
	StartedAt time.Time
}

// Repository returns the "owner/name" form of the session's repository.
func (s SessionRecord) Repository() string {
	return s.Owner + "/" + s.Name
}

// SessionSummary is a session record plus the number of recorded turns,
// as returned by history listings.
type SessionSummary struct {
	SessionRecord
	Turns int
}

// TurnRecord represents a single recorded conversation turn. Seq orders
// turns within a session, starting at 1.
type TurnRecord struct {
	SessionID string
	Seq       int
	Role      string
	Text      string
	CreatedAt time.Time
}
