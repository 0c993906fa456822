// Package similarity scores a query against a corpus of stored questions
// using TF-IDF weighted cosine similarity.
//
// An Index is built per corpus snapshot and is immutable after construction,
// so it is safe for concurrent use. Rebuilding per resolution keeps the
// scores consistent with the freshest corpus; the cost is bounded by the
// stored-question corpus, not by traffic volume.
package similarity

import (
	"math"

	"github.com/ronak026/chatbot/internal/textnorm"
)

// MatchThreshold is the minimum cosine similarity for a match to be
// accepted. Scores below it fall through to the external generator.
const MatchThreshold = 0.6

// document holds the TF-IDF representation of one corpus question.
type document struct {
	// weights maps each term to its tf*idf weight within this question.
	weights map[string]float64

	// norm is the Euclidean length of the weight vector.
	norm float64
}

// Index is a TF-IDF vector space over a corpus of normalized questions.
// Corpus order is preserved: document i corresponds to corpus entry i.
type Index struct {
	docs []document

	// idf maps each corpus term to its inverse document frequency,
	// computed with Lucene-style smoothing: ln((N+1)/(df+1)) + 1.
	// The smoothing keeps idf positive even for terms present in every
	// document, so a single-question corpus does not collapse to a zero
	// vector space.
	idf map[string]float64
}

// BuildIndex constructs a TF-IDF index over the given corpus. Entries are
// expected in normalized form (textnorm.Normalize); tokenization reuses
// textnorm.Tokens so the matcher operates over the same key space as exact
// lookup. An empty corpus yields a valid index that never matches.
func BuildIndex(corpus []string) *Index {
	if len(corpus) == 0 {
		return &Index{idf: make(map[string]float64)}
	}

	// Term frequencies per document, document frequencies across the corpus.
	// Term order of first appearance is kept per document so norms are
	// computed in a deterministic order: two identical questions must end
	// up with bit-identical vectors, or the tie-break would depend on
	// floating-point summation order.
	type docTerms struct {
		tf    map[string]int
		order []string
	}
	parsed := make([]docTerms, len(corpus))
	df := make(map[string]int)
	for i, question := range corpus {
		dt := docTerms{tf: make(map[string]int)}
		for _, term := range textnorm.Tokens(question) {
			if dt.tf[term] == 0 {
				dt.order = append(dt.order, term)
			}
			dt.tf[term]++
		}
		parsed[i] = dt
		for term := range dt.tf {
			df[term]++
		}
	}

	n := float64(len(corpus))
	idf := make(map[string]float64, len(df))
	for term, docFreq := range df {
		idf[term] = math.Log((n+1)/float64(docFreq+1)) + 1
	}

	docs := make([]document, len(corpus))
	for i, dt := range parsed {
		weights := make(map[string]float64, len(dt.tf))
		var sumSq float64
		for _, term := range dt.order {
			w := float64(dt.tf[term]) * idf[term]
			weights[term] = w
			sumSq += w * w
		}
		docs[i] = document{weights: weights, norm: math.Sqrt(sumSq)}
	}

	return &Index{docs: docs, idf: idf}
}

// Len returns the number of corpus entries in the index.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// BestMatch scores the query against every corpus entry and returns the
// index and cosine similarity of the best one. ok is false when the corpus
// is empty, the query has no terms in the corpus vocabulary, or the best
// score is below MatchThreshold.
//
// Ties on the maximum score resolve to the lowest corpus index, so results
// are deterministic for a given corpus order.
func (idx *Index) BestMatch(query string) (int, float64, bool) {
	if len(idx.docs) == 0 {
		return -1, 0, false
	}

	terms, norm := idx.queryVector(query)
	if norm == 0 {
		return -1, 0, false
	}

	bestIdx, bestScore := -1, 0.0
	for i, doc := range idx.docs {
		// Strict > keeps the lowest index on ties.
		if score := cosine(terms, norm, doc); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestIdx == -1 {
		return -1, 0, false
	}
	return bestIdx, bestScore, bestScore >= MatchThreshold
}

// termWeight is one component of a query vector.
type termWeight struct {
	term   string
	weight float64
}

// queryVector builds the TF-IDF vector for a query. Terms outside the
// corpus vocabulary carry no weight: the vocabulary is fixed when the index
// is built, exactly as a vectorizer fitted on the corpus alone. A query
// sharing no vocabulary with the corpus yields a zero vector.
//
// The vector is returned as a slice so every document in one BestMatch call
// is scored with the same term order; identical documents then produce
// bit-identical scores and the tie-break stays deterministic.
func (idx *Index) queryVector(query string) ([]termWeight, float64) {
	tf := make(map[string]int)
	var order []string
	for _, term := range textnorm.Tokens(query) {
		if _, known := idx.idf[term]; !known {
			continue
		}
		if tf[term] == 0 {
			order = append(order, term)
		}
		tf[term]++
	}

	terms := make([]termWeight, 0, len(order))
	var sumSq float64
	for _, term := range order {
		w := float64(tf[term]) * idx.idf[term]
		terms = append(terms, termWeight{term: term, weight: w})
		sumSq += w * w
	}
	return terms, math.Sqrt(sumSq)
}

// cosine computes the cosine similarity between a query vector and one
// corpus document.
func cosine(terms []termWeight, queryNorm float64, doc document) float64 {
	if doc.norm == 0 || queryNorm == 0 {
		return 0
	}
	var dot float64
	for _, tw := range terms {
		if dw, ok := doc.weights[tw.term]; ok {
			dot += tw.weight * dw
		}
	}
	return dot / (queryNorm * doc.norm)
}
