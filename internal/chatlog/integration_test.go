package chatlog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ronak026/chatbot/internal/chatlog"
	"github.com/ronak026/chatbot/internal/log"
	"github.com/ronak026/chatbot/internal/testutil"
)

func TestStoreIntegration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := chatlog.New(db.Pool, log.NewNop())
	ctx := context.Background()

	exchanges := []struct {
		caller, message, reply, stage string
	}{
		{"alice", "hello", "Hello! How can I help you?", "intent"},
		{"alice", "what is a mutex", "A mutual exclusion lock.", "exact_match"},
		{"bob", "bye", "Goodbye!", "intent"},
	}
	for _, x := range exchanges {
		e, err := store.Append(ctx, x.caller, x.message, x.reply, x.stage)
		if err != nil {
			t.Fatalf("Append(%q) error = %v", x.message, err)
		}
		if e.ID == uuid.Nil {
			t.Error("Append() returned nil ID")
		}
		if e.CreatedAt.IsZero() {
			t.Error("Append() returned zero timestamp")
		}
	}

	t.Run("recent returns newest first", func(t *testing.T) {
		entries, err := store.Recent(ctx, "alice", 10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(entries))
		}
		if entries[0].Message != "what is a mutex" {
			t.Errorf("newest entry = %q, want the mutex question", entries[0].Message)
		}
		if entries[1].Message != "hello" {
			t.Errorf("oldest entry = %q, want hello", entries[1].Message)
		}
	})

	t.Run("recent respects limit", func(t *testing.T) {
		entries, err := store.Recent(ctx, "alice", 1)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("entries = %d, want 1", len(entries))
		}
	})

	t.Run("callers are isolated", func(t *testing.T) {
		entries, err := store.Recent(ctx, "bob", 10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Message != "bye" {
			t.Errorf("bob's entries = %+v", entries)
		}
	})

	t.Run("unknown caller has no history", func(t *testing.T) {
		entries, err := store.Recent(ctx, "nobody", 10)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("entries = %d, want 0", len(entries))
		}
	})
}
