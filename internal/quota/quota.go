// Package quota enforces the per-caller daily budget for external generator
// calls. Cached and intent answers stay free and unlimited; only the
// generator stage consumes budget.
//
// Usage is keyed by (caller, UTC day), so the budget resets implicitly at
// midnight UTC without a scheduled job.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultDailyLimit is the number of generator calls a caller gets per day.
const DefaultDailyLimit = 20

// Store tracks per-caller daily generator usage in PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	limit  int
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store with the given daily limit. A limit <= 0 falls back
// to DefaultDailyLimit; a nil logger falls back to slog.Default().
func New(pool *pgxpool.Pool, limit int, logger *slog.Logger) *Store {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, limit: limit, logger: logger, now: time.Now}
}

// Limit returns the configured daily limit.
func (s *Store) Limit() int {
	return s.limit
}

func (s *Store) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// Allow reports whether the caller still has generator budget today.
func (s *Store) Allow(ctx context.Context, callerID string) (bool, error) {
	used, err := s.used(ctx, callerID)
	if err != nil {
		return false, err
	}
	return used < s.limit, nil
}

// Remaining returns how many generator calls the caller has left today.
func (s *Store) Remaining(ctx context.Context, callerID string) (int, error) {
	used, err := s.used(ctx, callerID)
	if err != nil {
		return 0, err
	}
	if used >= s.limit {
		return 0, nil
	}
	return s.limit - used, nil
}

// Increment records one generator call for the caller's current day.
func (s *Store) Increment(ctx context.Context, callerID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO generator_quota (caller_id, day, used)
		VALUES ($1, $2, 1)
		ON CONFLICT (caller_id, day)
		DO UPDATE SET used = generator_quota.used + 1`,
		callerID, s.today())
	if err != nil {
		return fmt.Errorf("increment quota for %q: %w", callerID, err)
	}
	return nil
}

func (s *Store) used(ctx context.Context, callerID string) (int, error) {
	var used int
	err := s.pool.QueryRow(ctx, `
		SELECT used FROM generator_quota
		WHERE caller_id = $1 AND day = $2`,
		callerID, s.today(),
	).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read quota for %q: %w", callerID, err)
	}
	return used, nil
}
