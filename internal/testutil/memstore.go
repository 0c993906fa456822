// Package testutil provides shared testing utilities: an in-memory
// knowledge store with the same atomic insert-if-absent semantics as the
// PostgreSQL store, a scripted generator, a quota fake, and container
// helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ronak026/chatbot/internal/knowledge"
)

// MemKnowledgeStore is an in-memory implementation of the resolver's
// KnowledgeStore contract. It preserves insertion order for corpus
// snapshots and counts calls so tests can assert which stages touched the
// store.
//
// Safe for concurrent use; UpsertLearned is atomic, which is what the race
// tests exercise.
type MemKnowledgeStore struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*knowledge.Entry

	// Error injection
	LookupErr   error
	SnapshotErr error
	UpsertErr   error

	// Call counters
	LookupCalls   int
	SnapshotCalls int
	UpsertCalls   int
}

// NewMemKnowledgeStore creates an empty in-memory store.
func NewMemKnowledgeStore() *MemKnowledgeStore {
	return &MemKnowledgeStore{entries: make(map[string]*knowledge.Entry)}
}

// Seed inserts an entry directly, bypassing counters. For test setup.
func (m *MemKnowledgeStore) Seed(question, display, answer string, verified bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[question]; !ok {
		m.order = append(m.order, question)
	}
	m.entries[question] = &knowledge.Entry{
		Question:        question,
		DisplayQuestion: display,
		Answer:          answer,
		Verified:        verified,
		CreatedAt:       time.Now(),
	}
}

// LookupExact implements the store contract.
func (m *MemKnowledgeStore) LookupExact(_ context.Context, question string) (*knowledge.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LookupCalls++
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	e, ok := m.entries[question]
	if !ok {
		return nil, fmt.Errorf("%w: %q", knowledge.ErrNotFound, question)
	}
	copied := *e
	return &copied, nil
}

// SnapshotCorpus implements the store contract, returning questions in
// insertion order.
func (m *MemKnowledgeStore) SnapshotCorpus(_ context.Context) ([]knowledge.CorpusEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotCalls++
	if m.SnapshotErr != nil {
		return nil, m.SnapshotErr
	}
	corpus := make([]knowledge.CorpusEntry, 0, len(m.order))
	for _, q := range m.order {
		corpus = append(corpus, knowledge.CorpusEntry{
			Question:        q,
			DisplayQuestion: m.entries[q].DisplayQuestion,
		})
	}
	return corpus, nil
}

// UpsertLearned implements the store contract: insert-if-absent, atomic,
// never overwrites.
func (m *MemKnowledgeStore) UpsertLearned(_ context.Context, question, display, answer string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		return false, m.UpsertErr
	}
	if _, ok := m.entries[question]; ok {
		return false, nil
	}
	m.order = append(m.order, question)
	m.entries[question] = &knowledge.Entry{
		Question:        question,
		DisplayQuestion: display,
		Answer:          answer,
		Verified:        false,
		CreatedAt:       time.Now(),
	}
	return true, nil
}

// Len returns the number of stored entries.
func (m *MemKnowledgeStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Get returns the stored entry, or nil when absent.
func (m *MemKnowledgeStore) Get(question string) *knowledge.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[question]
	if !ok {
		return nil
	}
	copied := *e
	return &copied
}

// Touched reports whether any store method was called.
func (m *MemKnowledgeStore) Touched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LookupCalls+m.SnapshotCalls+m.UpsertCalls > 0
}
