package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/davidmanzanoai/github-analytics/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each conversation session
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		started_at INTEGER NOT NULL
	);

	-- Individual conversation turns
	CREATE TABLE IF NOT EXISTS turns (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	-- Indexes for common queries
	CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// SaveSession inserts a new session record.
func (s *Store) SaveSession(ctx context.Context, session store.SessionRecord) error {
	query := `
		INSERT INTO sessions (id, owner, name, started_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Owner,
		session.Name,
		session.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// ListSessions returns the most recent sessions with their turn counts,
// newest first. A limit of zero or less returns all sessions.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]store.SessionSummary, error) {
	query := `
		SELECT s.id, s.owner, s.name, s.started_at, COUNT(t.seq)
		FROM sessions s
		LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC, s.id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []store.SessionSummary
	for rows.Next() {
		var summary store.SessionSummary
		var startedAt int64
		if err := rows.Scan(&summary.ID, &summary.Owner, &summary.Name, &startedAt, &summary.Turns); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		summary.StartedAt = time.Unix(startedAt, 0).UTC()
		sessions = append(sessions, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// AppendTurns inserts turn records for a session in a single transaction.
func (s *Store) AppendTurns(ctx context.Context, sessionID string, turns []store.TurnRecord) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO turns (session_id, seq, role, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, turn := range turns {
		_, err := tx.ExecContext(ctx, query,
			sessionID,
			turn.Seq,
			turn.Role,
			turn.Text,
			turn.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to save turn %d: %w", turn.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turns: %w", err)
	}

	return nil
}

// GetTranscript returns all turns recorded for a session in sequence order.
func (s *Store) GetTranscript(ctx context.Context, sessionID string) ([]store.TurnRecord, error) {
	query := `
		SELECT session_id, seq, role, text, created_at
		FROM turns
		WHERE session_id = ?
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []store.TurnRecord
	for rows.Next() {
		var turn store.TurnRecord
		var createdAt int64
		if err := rows.Scan(&turn.SessionID, &turn.Seq, &turn.Role, &turn.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.CreatedAt = time.Unix(createdAt, 0).UTC()
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}

	return turns, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
