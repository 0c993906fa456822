package similarity

import (
	"math"
	"testing"
)

func TestBestMatchEmptyCorpus(t *testing.T) {
	idx := BuildIndex(nil)
	if idx.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", idx.Len())
	}
	if i, score, ok := idx.BestMatch("anything at all"); ok || i != -1 || score != 0 {
		t.Errorf("BestMatch on empty corpus = (%d, %v, %v), want (-1, 0, false)", i, score, ok)
	}
}

func TestBestMatchIdenticalQuestion(t *testing.T) {
	idx := BuildIndex([]string{
		"how do i reverse a string",
		"what is a goroutine",
	})

	i, score, ok := idx.BestMatch("how do i reverse a string")
	if !ok {
		t.Fatalf("BestMatch rejected an identical question (score %v)", score)
	}
	if i != 0 {
		t.Errorf("BestMatch index = %d, want 0", i)
	}
	if math.Abs(score-1.0) > 1e-9 {
		t.Errorf("BestMatch score = %v, want 1.0", score)
	}
}

func TestBestMatchDisjointVocabulary(t *testing.T) {
	idx := BuildIndex([]string{
		"how do i reverse a string",
		"what is a goroutine",
	})

	if i, score, ok := idx.BestMatch("capital of france"); ok {
		t.Errorf("BestMatch = (%d, %v, %v), want no match for disjoint vocabulary", i, score, ok)
	}
}

func TestBestMatchEmptyQuery(t *testing.T) {
	idx := BuildIndex([]string{"how do i reverse a string"})

	if _, _, ok := idx.BestMatch(""); ok {
		t.Error("BestMatch accepted an empty query")
	}
	if _, _, ok := idx.BestMatch("???"); ok {
		t.Error("BestMatch accepted a punctuation-only query")
	}
}

// Identical similarity scores must resolve to the lowest corpus index.
func TestBestMatchTieBreak(t *testing.T) {
	idx := BuildIndex([]string{
		"what is a slice",
		"how do i sort a map",
		"what is a slice", // duplicate of index 0
	})

	// Run repeatedly: map iteration order varies between calls, and the
	// tie-break must not depend on it.
	for range 50 {
		i, _, ok := idx.BestMatch("what is a slice")
		if !ok {
			t.Fatal("BestMatch rejected an exact duplicate")
		}
		if i != 0 {
			t.Fatalf("BestMatch index = %d, want 0 (lowest index on tie)", i)
		}
	}
}

func TestBestMatchSharedTokens(t *testing.T) {
	idx := BuildIndex([]string{
		"how do i reverse a string",
		"what is the gil in python",
	})

	i, score, ok := idx.BestMatch("how can i flip a string")
	if !ok {
		t.Fatalf("BestMatch = (%d, %v, %v), want a match for overlapping phrasing", i, score, ok)
	}
	if i != 0 {
		t.Errorf("BestMatch index = %d, want 0", i)
	}
	if score < MatchThreshold || score > 1 {
		t.Errorf("score = %v, want within [%v, 1]", score, MatchThreshold)
	}
}

// The threshold is inclusive: a score of exactly 0.6 is accepted, anything
// below is rejected. Exercised directly against the acceptance comparison
// used by BestMatch.
func TestThresholdBoundary(t *testing.T) {
	tests := []struct {
		score float64
		want  bool
	}{
		{0.6, true},
		{0.6000001, true},
		{0.5999999, false},
		{1.0, true},
		{0.0, false},
	}
	for _, tt := range tests {
		if got := tt.score >= MatchThreshold; got != tt.want {
			t.Errorf("accept(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

// cosine of a document against itself is 1 regardless of idf weighting.
func TestCosineSelfSimilarity(t *testing.T) {
	idx := BuildIndex([]string{"alpha beta gamma", "alpha delta"})

	for q, wantIdx := range map[string]int{
		"alpha beta gamma": 0,
		"alpha delta":      1,
	} {
		i, score, ok := idx.BestMatch(q)
		if !ok || i != wantIdx {
			t.Fatalf("BestMatch(%q) = (%d, %v, %v), want index %d", q, i, score, ok, wantIdx)
		}
		if math.Abs(score-1.0) > 1e-9 {
			t.Errorf("BestMatch(%q) score = %v, want 1.0", q, score)
		}
	}
}

// Repeated terms weigh more: a query repeating a corpus term should score
// higher against the document where that term dominates.
func TestTermFrequencyWeighting(t *testing.T) {
	idx := BuildIndex([]string{
		"go go go routine",
		"routine maintenance schedule",
	})

	i, _, ok := idx.BestMatch("go go routine")
	if !ok || i != 0 {
		t.Errorf("BestMatch = (%d, _, %v), want (0, true)", i, ok)
	}
}
