package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// ScriptedGenerator is a Generator fake. It returns Response unless Err is
// set, counts calls, and optionally blocks on a gate channel so race tests
// can hold two resolutions inside the generator stage at once.
type ScriptedGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Gate     chan struct{} // if non-nil, Generate waits for a receive

	calls int
}

// Generate implements the generator contract.
func (g *ScriptedGenerator) Generate(ctx context.Context, _ string) (string, error) {
	g.mu.Lock()
	g.calls++
	gate := g.Gate
	response, err := g.Response, g.Err
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return response, nil
}

// Calls returns how many times Generate was invoked.
func (g *ScriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// FakeQuota is a QuotaStore fake with a fixed budget.
type FakeQuota struct {
	mu    sync.Mutex
	Limit int
	used  map[string]int

	AllowErr     error
	IncrementErr error
}

// NewFakeQuota creates a quota fake with the given per-caller budget.
func NewFakeQuota(limit int) *FakeQuota {
	return &FakeQuota{Limit: limit, used: make(map[string]int)}
}

// Allow implements the quota contract.
func (q *FakeQuota) Allow(_ context.Context, callerID string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.AllowErr != nil {
		return false, q.AllowErr
	}
	return q.used[callerID] < q.Limit, nil
}

// Increment implements the quota contract.
func (q *FakeQuota) Increment(_ context.Context, callerID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.IncrementErr != nil {
		return q.IncrementErr
	}
	q.used[callerID]++
	return nil
}

// Used returns the recorded usage for a caller.
func (q *FakeQuota) Used(callerID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used[callerID]
}

// NewNopLogger returns a logger that discards everything. Tests that want
// log output can pass their own handler instead.
func NewNopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
