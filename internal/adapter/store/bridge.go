package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/davidmanzanoai/github-analytics/internal/domain"
	"github.com/davidmanzanoai/github-analytics/internal/store"
)

// Bridge adapts store.Store to the session.Recorder interface.
// This avoids circular dependencies between packages.
//
// The bridge owns session identity: the session core never sees IDs, so
// the bridge generates one per started session and numbers turns itself.
type Bridge struct {
	store store.Store
	clock func() time.Time

	mu        sync.Mutex
	sessionID string
	seq       int
}

// NewBridge creates a new store adapter.
func NewBridge(s store.Store) *Bridge {
	return &Bridge{
		store: s,
		clock: time.Now,
	}
}

// SetClock overrides the time source, for testing.
func (b *Bridge) SetClock(clock func() time.Time) {
	b.clock = clock
}

// SessionStarted persists a new session record and resets turn numbering.
func (b *Bridge) SessionStarted(ctx context.Context, repo domain.RepositoryIdentity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	startedAt := b.clock().UTC()
	record := store.SessionRecord{
		ID:        store.GenerateSessionID(startedAt),
		Owner:     repo.Owner,
		Name:      repo.Name,
		StartedAt: startedAt,
	}

	if err := b.store.SaveSession(ctx, record); err != nil {
		return fmt.Errorf("failed to record session for %s: %w", repo.FullName(), err)
	}

	b.sessionID = record.ID
	b.seq = 0

	return nil
}

// TurnsAppended persists completed turns against the current session.
func (b *Bridge) TurnsAppended(ctx context.Context, turns []domain.Turn) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessionID == "" {
		return fmt.Errorf("no session started")
	}

	now := b.clock().UTC()
	records := make([]store.TurnRecord, len(turns))
	for i, turn := range turns {
		records[i] = store.TurnRecord{
			SessionID: b.sessionID,
			Seq:       b.seq + i + 1,
			Role:      string(turn.Role),
			Text:      turn.Text,
			CreatedAt: now,
		}
	}

	if err := b.store.AppendTurns(ctx, b.sessionID, records); err != nil {
		return fmt.Errorf("failed to record turns: %w", err)
	}

	b.seq += len(turns)

	return nil
}
