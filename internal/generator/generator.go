// Package generator adapts the Gemini model behind the single call the
// resolution pipeline needs: generate an answer for a question nothing in
// the knowledge base could serve.
//
// Every failure mode (timeout, quota, network, empty response) is uniform
// from the pipeline's point of view: an error means "no answer available"
// and never aborts the resolution.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
)

const (
	// DefaultModelName is the provider-qualified default model.
	DefaultModelName = "googleai/gemini-2.5-flash"

	// DefaultTimeout bounds one generation round-trip so a hanging call
	// cannot starve the caller; timeout counts as a generator failure.
	DefaultTimeout = 30 * time.Second
)

// systemPrompt shapes answers so they cache well: self-contained, no echo
// of the question, readable without the conversation around it.
const systemPrompt = `You are a helpful assistant that provides detailed, well-structured answers.

When answering:
1. Start with a clear explanation, not with a restatement of the question
2. Include practical examples or code snippets where they help
3. For code requests, provide complete working code with brief comments
4. Keep the answer self-contained so it stays useful when reread later`

// Sentinel errors for generation.
var (
	// ErrEmptyResponse indicates the model returned no usable text.
	ErrEmptyResponse = errors.New("model returned empty response")
)

// Config contains all parameters for the Gemini generator.
type Config struct {
	Genkit    *genkit.Genkit
	ModelName string        // zero value uses DefaultModelName
	Timeout   time.Duration // zero value uses DefaultTimeout
	Limiter   *rate.Limiter // nil uses a conservative default
	Logger    *slog.Logger  // nil uses slog.Default()
}

// Gemini generates answers through Genkit's GoogleAI plugin.
//
// All configuration is captured immutably at construction time; Gemini is
// safe for concurrent use.
type Gemini struct {
	g         *genkit.Genkit
	modelName string
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a Gemini generator. The Genkit instance must already be
// initialized with the GoogleAI plugin; a missing API key is a
// configuration state handled upstream by not constructing a generator at
// all (the pipeline then treats the stage as permanently failing).
func New(cfg Config) (*Gemini, error) {
	if cfg.Genkit == nil {
		return nil, errors.New("genkit instance is required")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = DefaultModelName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Limiter == nil {
		// 1 request/sec sustained with small bursts. Cached answers never
		// reach this path, so the limiter only shapes genuinely new
		// questions.
		cfg.Limiter = rate.NewLimiter(1, 5)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Gemini{
		g:         cfg.Genkit,
		modelName: cfg.ModelName,
		timeout:   cfg.Timeout,
		limiter:   cfg.Limiter,
		logger:    cfg.Logger,
	}, nil
}

// Generate produces an answer for the raw (un-normalized) message. The
// original phrasing goes to the model; normalization only matters for
// matching and storage keys.
//
// The call respects ctx cancellation, waits on the rate limiter, and is
// bounded by the configured timeout.
func (g *Gemini) Generate(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyResponse
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := genkit.Generate(ctx, g.g,
		ai.WithModelName(g.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(message),
	)
	if err != nil {
		g.logger.Warn("generation failed", "model", g.modelName, "error", err)
		return "", fmt.Errorf("generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.logger.Warn("generation returned empty text", "model", g.modelName)
		return "", ErrEmptyResponse
	}

	g.logger.Debug("generation succeeded",
		"model", g.modelName,
		"duration", time.Since(start),
		"chars", len(text))
	return text, nil
}
