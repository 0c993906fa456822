// Package resolver orchestrates the end-to-end resolution pipeline: cheap
// deterministic stages first, the external generator last, and a learning
// write-back so the next identical or similar question never pays for
// generation again.
//
// The pipeline is an ordered sequence of stages with no backtracking:
//
//	EmptyCheck → IntentCheck → ExactMatch → SimilarityMatch → ExternalFallback
//
// Each stage either produces the final answer or falls through to the next.
// The stage that produced the answer is reported on the Result so callers
// and tests can observe pipeline behavior without parsing answer text.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ronak026/chatbot/internal/intent"
	"github.com/ronak026/chatbot/internal/knowledge"
	"github.com/ronak026/chatbot/internal/similarity"
	"github.com/ronak026/chatbot/internal/textnorm"
)

// Stage identifies which pipeline stage produced a final answer.
type Stage int

const (
	// StageEmpty means the message normalized to nothing.
	StageEmpty Stage = iota

	// StageIntent means a rule-based intent matched.
	StageIntent

	// StageExact means the exact-match lookup hit.
	StageExact

	// StageSimilarity means a similar stored question was reused.
	StageSimilarity

	// StageQuota means the caller's daily generator budget was exhausted.
	StageQuota

	// StageGenerated means the external generator produced (or, for the
	// loser of a concurrent learning race, another request's generator
	// produced) the answer.
	StageGenerated

	// StageFallback means generation failed or was disabled.
	StageFallback
)

// String returns a stable name for logging and assertions.
func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "empty"
	case StageIntent:
		return "intent"
	case StageExact:
		return "exact_match"
	case StageSimilarity:
		return "similarity"
	case StageQuota:
		return "quota"
	case StageGenerated:
		return "generated"
	case StageFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Fixed replies for the terminal non-answer states.
const (
	// EmptyReply answers messages that normalize to nothing.
	EmptyReply = "Please type a message."

	// FallbackReply answers questions the generator could not serve. The
	// question is recorded in the chat log for future training; no
	// knowledge entry is written (see UpsertLearned policy).
	FallbackReply = "I'm still learning and don't have an answer for that yet. Your question has been recorded for future training."

	// QuotaReply answers callers whose daily generator budget ran out.
	QuotaReply = "You've reached your daily limit for new questions. Answers already in the knowledge base stay unlimited; your limit resets tomorrow."
)

// KnowledgeStore is the store contract the pipeline consumes. The
// production implementation is knowledge.Store; tests use an in-memory
// fake with the same atomic upsert-if-absent semantics.
type KnowledgeStore interface {
	LookupExact(ctx context.Context, question string) (*knowledge.Entry, error)
	SnapshotCorpus(ctx context.Context) ([]knowledge.CorpusEntry, error)
	UpsertLearned(ctx context.Context, question, display, answer string) (inserted bool, err error)
}

// Generator produces an answer for a question with no cached match. Any
// error is treated uniformly as "no answer available".
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// QuotaStore gates the generator stage per caller and day.
type QuotaStore interface {
	Allow(ctx context.Context, callerID string) (bool, error)
	Increment(ctx context.Context, callerID string) error
}

// MatchFunc scores a query against a corpus of normalized questions and
// returns the index and confidence of the best match, or ok=false when
// nothing reaches the acceptance threshold.
type MatchFunc func(corpus []string, query string) (index int, confidence float64, ok bool)

// tfidfMatch is the default MatchFunc: rebuild the TF-IDF model over the
// snapshot and score against it.
func tfidfMatch(corpus []string, query string) (int, float64, bool) {
	return similarity.BuildIndex(corpus).BestMatch(query)
}

// Config contains all parameters for the Resolver.
type Config struct {
	Store     KnowledgeStore     // required
	Generator Generator          // nil = generation disabled, fallback always fires
	Quota     QuotaStore         // nil = unlimited
	Intents   *intent.Classifier // nil = intent.DefaultRules
	Match     MatchFunc          // nil = TF-IDF cosine matcher
	Logger    *slog.Logger       // nil = slog.Default()
}

func (cfg Config) validate() error {
	if cfg.Store == nil {
		return errors.New("knowledge store is required")
	}
	return nil
}

// Result is the outcome of one resolution.
type Result struct {
	Answer string
	Stage  Stage
}

// request carries one message through the stages.
type request struct {
	raw        string
	normalized string
	callerID   string
}

// stageFunc runs one pipeline stage. A nil Result means fall through to the
// next stage; a non-nil Result halts the pipeline. An error aborts the
// whole resolution (store failures only, per the error taxonomy).
type stageFunc func(ctx context.Context, req *request) (*Result, error)

// Resolver runs the resolution pipeline. It holds no mutable state of its
// own and is safe for concurrent use; the knowledge store is the only
// shared mutable resource.
type Resolver struct {
	store     KnowledgeStore
	generator Generator
	quota     QuotaStore
	intents   *intent.Classifier
	match     MatchFunc
	logger    *slog.Logger
	stages    []stageFunc
}

// New creates a Resolver from the given configuration.
func New(cfg Config) (*Resolver, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid resolver config: %w", err)
	}
	if cfg.Intents == nil {
		cfg.Intents = intent.New(nil)
	}
	if cfg.Match == nil {
		cfg.Match = tfidfMatch
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := &Resolver{
		store:     cfg.Store,
		generator: cfg.Generator,
		quota:     cfg.Quota,
		intents:   cfg.Intents,
		match:     cfg.Match,
		logger:    cfg.Logger,
	}
	r.stages = []stageFunc{
		r.emptyCheck,
		r.intentCheck,
		r.exactMatch,
		r.similarityMatch,
		r.externalFallback,
	}
	return r, nil
}

// Resolve turns a raw message into an answer. callerID scopes the daily
// generator quota and may be empty for unattributed callers (no quota).
//
// Resolve fails only when the knowledge store is unavailable; generator
// failures surface as the fixed fallback reply, never as an error.
func (r *Resolver) Resolve(ctx context.Context, raw, callerID string) (Result, error) {
	req := &request{
		raw:        raw,
		normalized: textnorm.Normalize(raw),
		callerID:   callerID,
	}

	for _, stage := range r.stages {
		res, err := stage(ctx, req)
		if err != nil {
			return Result{}, err
		}
		if res != nil {
			r.logger.Debug("resolved",
				"stage", res.Stage,
				"caller", callerID,
				"question", req.normalized)
			return *res, nil
		}
	}

	// The fallback stage is terminal, so this is unreachable.
	return Result{}, errors.New("resolution pipeline produced no result")
}

// emptyCheck halts messages that normalize to nothing before any storage
// access.
func (r *Resolver) emptyCheck(_ context.Context, req *request) (*Result, error) {
	if req.normalized == "" {
		return &Result{Answer: EmptyReply, Stage: StageEmpty}, nil
	}
	return nil, nil
}

// intentCheck short-circuits conversational boilerplate with canned
// replies. No storage write, no learning.
func (r *Resolver) intentCheck(_ context.Context, req *request) (*Result, error) {
	it := r.intents.Classify(req.normalized)
	if it == intent.Unknown {
		return nil, nil
	}
	return &Result{Answer: r.intents.Reply(it), Stage: StageIntent}, nil
}

// exactMatch returns the stored answer for an identical (normalized)
// question.
func (r *Resolver) exactMatch(ctx context.Context, req *request) (*Result, error) {
	entry, err := r.store.LookupExact(ctx, req.normalized)
	if err != nil {
		if errors.Is(err, knowledge.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("exact match: %w", err)
	}
	return &Result{Answer: entry.Answer, Stage: StageExact}, nil
}

// similarityMatch scores the question against a point-in-time corpus
// snapshot and reuses the best stored answer when confidence reaches the
// threshold.
func (r *Resolver) similarityMatch(ctx context.Context, req *request) (*Result, error) {
	corpus, err := r.store.SnapshotCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("similarity match: %w", err)
	}
	if len(corpus) == 0 {
		return nil, nil
	}

	questions := make([]string, len(corpus))
	for i, e := range corpus {
		questions[i] = e.Question
	}

	idx, confidence, ok := r.match(questions, req.normalized)
	if !ok {
		return nil, nil
	}

	entry, err := r.store.LookupExact(ctx, corpus[idx].Question)
	if err != nil {
		if errors.Is(err, knowledge.ErrNotFound) {
			// Entries are never deleted by this core, but a racing
			// trusted path could in principle remove one between the
			// snapshot and this read. Treat it as a miss.
			return nil, nil
		}
		return nil, fmt.Errorf("similarity match: %w", err)
	}

	r.logger.Debug("similar question matched",
		"matched", corpus[idx].Question,
		"confidence", confidence)
	return &Result{Answer: entry.Answer, Stage: StageSimilarity}, nil
}

// externalFallback is the terminal stage: consult the generator, learn the
// answer, or fall back to the fixed reply. Two concurrent resolutions of
// the same new question may both reach this stage; the store's
// insert-if-absent contract guarantees a single canonical entry, and the
// loser re-reads and returns the winner's answer.
func (r *Resolver) externalFallback(ctx context.Context, req *request) (*Result, error) {
	if r.generator == nil {
		return &Result{Answer: FallbackReply, Stage: StageFallback}, nil
	}

	if r.quota != nil && req.callerID != "" {
		allowed, err := r.quota.Allow(ctx, req.callerID)
		if err != nil {
			return nil, fmt.Errorf("quota check: %w", err)
		}
		if !allowed {
			return &Result{Answer: QuotaReply, Stage: StageQuota}, nil
		}
	}

	answer, err := r.generator.Generate(ctx, req.raw)
	if err != nil {
		// Generator failures are uniform "no answer available". No
		// knowledge entry is written: an empty cached answer would
		// permanently short-circuit future exact matches for this
		// question even after the generator recovers.
		r.logger.Debug("generation failed, falling back",
			"question", req.normalized, "error", err)
		return &Result{Answer: FallbackReply, Stage: StageFallback}, nil
	}

	if r.quota != nil && req.callerID != "" {
		if err := r.quota.Increment(ctx, req.callerID); err != nil {
			// Quota is advisory bookkeeping at this point; the answer is
			// already paid for.
			r.logger.Warn("quota increment failed", "caller", req.callerID, "error", err)
		}
	}

	inserted, err := r.store.UpsertLearned(ctx, req.normalized, req.raw, answer)
	if err != nil {
		return nil, fmt.Errorf("learn answer: %w", err)
	}
	if !inserted {
		// Lost the learning race: another resolution stored this question
		// first. Its answer is the canonical one; discard ours.
		winner, err := r.store.LookupExact(ctx, req.normalized)
		if err == nil {
			return &Result{Answer: winner.Answer, Stage: StageGenerated}, nil
		}
		if !errors.Is(err, knowledge.ErrNotFound) {
			return nil, fmt.Errorf("reread after lost race: %w", err)
		}
		// The winning entry vanished; fall through to our own answer.
	}

	return &Result{Answer: answer, Stage: StageGenerated}, nil
}
