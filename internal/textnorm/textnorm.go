// Package textnorm canonicalizes raw chat text into the key space shared by
// exact lookup, similarity matching, and knowledge storage.
//
// Normalize is the single source of normalization logic in the application.
// Knowledge store keys and similarity corpus entries must always be produced
// by it, never by ad hoc transformations, so that exact match and similarity
// match operate over the same keys.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize converts raw text into its canonical matching form:
// lowercased, stripped of characters that are not letters, digits, or
// whitespace, with internal whitespace collapsed to single spaces and
// leading/trailing whitespace removed.
//
// Normalize is pure, total, and idempotent: Normalize(Normalize(s)) ==
// Normalize(s) for every input. All-punctuation or all-whitespace input
// normalizes to the empty string; callers must treat that case specially.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			pendingSpace = true
		}
		// Everything else (punctuation, symbols) is dropped.
	}

	return b.String()
}

// Tokens splits text into its normalized tokens, each a maximal run of
// letters or digits. The result is empty when Normalize(text) is empty.
func Tokens(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}
