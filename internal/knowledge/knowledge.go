// Package knowledge implements the persistent question/answer store backing
// the resolution pipeline.
//
// The store is the single source of truth for learned answers and the only
// shared mutable state in the core. Race safety for concurrent learning
// relies on a storage-level uniqueness constraint: UpsertLearned inserts
// with ON CONFLICT DO NOTHING, so whichever request wins the race becomes
// the permanent cached answer and every loser can detect the conflict and
// re-read the winner's entry.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no entry exists for the given question key.
	ErrNotFound = errors.New("knowledge entry not found")
)

// Entry is one cached question/answer record. Question is the normalized
// key (textnorm.Normalize output); DisplayQuestion preserves the raw text
// for audit and history and plays no part in matching.
type Entry struct {
	Question        string
	DisplayQuestion string
	Answer          string
	Verified        bool
	CreatedAt       time.Time
}

// CorpusEntry is one element of a corpus snapshot.
type CorpusEntry struct {
	Question        string
	DisplayQuestion string
}

// Store manages knowledge entries with a PostgreSQL backend.
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

// LookupExact returns the entry stored under the normalized question key,
// or ErrNotFound when the key is absent. Any other error means the store is
// unavailable and must be treated as a hard failure by the caller.
func (s *Store) LookupExact(ctx context.Context, question string) (*Entry, error) {
	var e Entry
	err := s.pool.QueryRow(ctx, `
		SELECT question, display_question, answer, verified, created_at
		FROM knowledge_entries
		WHERE question = $1`, question,
	).Scan(&e.Question, &e.DisplayQuestion, &e.Answer, &e.Verified, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, question)
		}
		return nil, fmt.Errorf("lookup %q: %w", question, err)
	}
	return &e, nil
}

// SnapshotCorpus returns a point-in-time view of all stored questions in
// insertion order. A single SELECT gives atomic enumeration: entries added
// after the snapshot starts are not included, entries present at snapshot
// time are never omitted.
func (s *Store) SnapshotCorpus(ctx context.Context) ([]CorpusEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT question, display_question
		FROM knowledge_entries
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot corpus: %w", err)
	}
	defer rows.Close()

	var corpus []CorpusEntry
	for rows.Next() {
		var e CorpusEntry
		if err := rows.Scan(&e.Question, &e.DisplayQuestion); err != nil {
			return nil, fmt.Errorf("scan corpus entry: %w", err)
		}
		corpus = append(corpus, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot corpus: %w", err)
	}
	return corpus, nil
}

// UpsertLearned inserts a new auto-learned entry (verified=false) under the
// normalized question key. When the key already exists the call is a no-op
// and reports inserted=false; the existing answer is never overwritten.
// This is the race-safety contract: of all concurrent resolutions for the
// same new question, exactly one insert succeeds.
func (s *Store) UpsertLearned(ctx context.Context, question, display, answer string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO knowledge_entries (question, display_question, answer, verified)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (question) DO NOTHING`,
		question, display, answer)
	if err != nil {
		return false, fmt.Errorf("upsert learned %q: %w", question, err)
	}

	inserted := tag.RowsAffected() > 0
	if inserted {
		s.logger.Debug("learned new entry", "question", question)
	} else {
		s.logger.Debug("entry already present, insert skipped", "question", question)
	}
	return inserted, nil
}

// UpdateAnswer overwrites the answer of an existing entry and marks it
// verified. This is the trusted-update path, outside the learning pipeline;
// it is the only way an existing answer changes.
func (s *Store) UpdateAnswer(ctx context.Context, question, answer string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE knowledge_entries
		SET answer = $2, verified = TRUE
		WHERE question = $1`, question, answer)
	if err != nil {
		return fmt.Errorf("update answer %q: %w", question, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, question)
	}
	s.logger.Info("answer updated via trusted path", "question", question)
	return nil
}

// MarkVerified flags an existing entry as verified without changing its
// answer.
func (s *Store) MarkVerified(ctx context.Context, question string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE knowledge_entries
		SET verified = TRUE
		WHERE question = $1`, question)
	if err != nil {
		return fmt.Errorf("mark verified %q: %w", question, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, question)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
