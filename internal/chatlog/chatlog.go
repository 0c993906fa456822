// Package chatlog persists the per-caller interaction log. Each resolved
// message produces one row: what the caller asked, what the bot replied,
// and which pipeline stage produced the reply.
package chatlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one logged exchange.
type Entry struct {
	ID        uuid.UUID
	CallerID  string
	Message   string
	Reply     string
	Stage     string
	CreatedAt time.Time
}

// Store manages chat log persistence with a PostgreSQL backend.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store on the given connection pool.
// A nil logger falls back to slog.Default().
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Append records one exchange and returns it with its generated ID and
// timestamp filled in.
func (s *Store) Append(ctx context.Context, callerID, message, reply, stage string) (*Entry, error) {
	e := Entry{
		ID:       uuid.New(),
		CallerID: callerID,
		Message:  message,
		Reply:    reply,
		Stage:    stage,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_log (id, caller_id, message, reply, stage)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		e.ID, e.CallerID, e.Message, e.Reply, e.Stage,
	).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append chat log: %w", err)
	}

	s.logger.Debug("chat exchange logged", "caller", callerID, "stage", stage)
	return &e, nil
}

// Recent returns the caller's most recent exchanges, newest first.
func (s *Store) Recent(ctx context.Context, callerID string, limit int32) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, caller_id, message, reply, stage, created_at
		FROM chat_log
		WHERE caller_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, callerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat log for %q: %w", callerID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CallerID, &e.Message, &e.Reply, &e.Stage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat log for %q: %w", callerID, err)
	}
	return entries, nil
}
