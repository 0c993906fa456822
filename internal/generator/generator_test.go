package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNewRequiresGenkit(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() without Genkit succeeded, want error")
	}
}

func TestGenerateRejectsBlankMessage(t *testing.T) {
	// A blank message can be rejected before any Genkit call, so the
	// missing instance is never touched.
	g := &Gemini{limiter: rate.NewLimiter(rate.Inf, 1), timeout: time.Second}

	_, err := g.Generate(t.Context(), "   ")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Generate(blank) error = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateHonorsCanceledContext(t *testing.T) {
	g := &Gemini{limiter: rate.NewLimiter(0, 0), timeout: time.Second}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := g.Generate(ctx, "what is a goroutine")
	if err == nil {
		t.Fatal("Generate() with canceled context succeeded, want error")
	}
}
