package knowledge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ronak026/chatbot/internal/knowledge"
	"github.com/ronak026/chatbot/internal/log"
	"github.com/ronak026/chatbot/internal/testutil"
)

func TestStoreIntegration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := knowledge.New(db.Pool, log.NewNop())
	ctx := context.Background()

	t.Run("lookup missing returns ErrNotFound", func(t *testing.T) {
		_, err := store.LookupExact(ctx, "what is a goroutine")
		if !errors.Is(err, knowledge.ErrNotFound) {
			t.Fatalf("LookupExact() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("upsert then lookup", func(t *testing.T) {
		inserted, err := store.UpsertLearned(ctx, "what is a goroutine", "What is a Goroutine?", "A lightweight thread managed by the Go runtime.")
		if err != nil {
			t.Fatalf("UpsertLearned() error = %v", err)
		}
		if !inserted {
			t.Fatal("UpsertLearned() inserted = false, want true")
		}

		e, err := store.LookupExact(ctx, "what is a goroutine")
		if err != nil {
			t.Fatalf("LookupExact() error = %v", err)
		}
		if e.Answer != "A lightweight thread managed by the Go runtime." {
			t.Errorf("answer = %q", e.Answer)
		}
		if e.DisplayQuestion != "What is a Goroutine?" {
			t.Errorf("display question = %q", e.DisplayQuestion)
		}
		if e.Verified {
			t.Error("learned entry marked verified on insert")
		}
		if e.CreatedAt.IsZero() {
			t.Error("created_at not populated")
		}
	})

	t.Run("conflicting upsert keeps first answer", func(t *testing.T) {
		inserted, err := store.UpsertLearned(ctx, "what is a goroutine", "what is a goroutine", "A different answer.")
		if err != nil {
			t.Fatalf("UpsertLearned() error = %v", err)
		}
		if inserted {
			t.Fatal("UpsertLearned() inserted = true on conflict, want false")
		}

		e, err := store.LookupExact(ctx, "what is a goroutine")
		if err != nil {
			t.Fatalf("LookupExact() error = %v", err)
		}
		if e.Answer != "A lightweight thread managed by the Go runtime." {
			t.Errorf("answer after conflict = %q, want original", e.Answer)
		}
	})

	t.Run("snapshot preserves insertion order", func(t *testing.T) {
		if _, err := store.UpsertLearned(ctx, "what is a channel", "what is a channel", "A typed conduit."); err != nil {
			t.Fatalf("UpsertLearned() error = %v", err)
		}

		corpus, err := store.SnapshotCorpus(ctx)
		if err != nil {
			t.Fatalf("SnapshotCorpus() error = %v", err)
		}
		if len(corpus) != 2 {
			t.Fatalf("corpus size = %d, want 2", len(corpus))
		}
		if corpus[0].Question != "what is a goroutine" || corpus[1].Question != "what is a channel" {
			t.Errorf("corpus order = %q, %q", corpus[0].Question, corpus[1].Question)
		}
	})

	t.Run("update answer marks verified", func(t *testing.T) {
		if err := store.UpdateAnswer(ctx, "what is a channel", "A typed conduit for communication between goroutines."); err != nil {
			t.Fatalf("UpdateAnswer() error = %v", err)
		}

		e, err := store.LookupExact(ctx, "what is a channel")
		if err != nil {
			t.Fatalf("LookupExact() error = %v", err)
		}
		if !e.Verified {
			t.Error("entry not verified after UpdateAnswer")
		}
		if e.Answer != "A typed conduit for communication between goroutines." {
			t.Errorf("answer = %q", e.Answer)
		}
	})

	t.Run("update missing returns ErrNotFound", func(t *testing.T) {
		err := store.UpdateAnswer(ctx, "no such question", "answer")
		if !errors.Is(err, knowledge.ErrNotFound) {
			t.Fatalf("UpdateAnswer() error = %v, want ErrNotFound", err)
		}
		err = store.MarkVerified(ctx, "no such question")
		if !errors.Is(err, knowledge.ErrNotFound) {
			t.Fatalf("MarkVerified() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("count", func(t *testing.T) {
		n, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if n != 2 {
			t.Errorf("Count() = %d, want 2", n)
		}
	})
}
