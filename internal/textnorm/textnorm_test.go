package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "HELLO", "hello"},
		{"strips whitespace", "  hello  ", "hello"},
		{"removes special chars", "what is python???", "what is python"},
		{"uppercase with special", "WHAT IS PYTHON???", "what is python"},
		{"collapses internal whitespace", "what   is \t python", "what is python"},
		{"keeps digits", "go 1.25 release", "go 125 release"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n", ""},
		{"punctuation only", "???!!!", ""},
		{"unicode letters", "Grüße  DICH", "grüße dich"},
		{"mixed punctuation between words", "how-do-i-reverse", "howdoireverse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello, World!",
		"  WHAT is   Python?? ",
		"",
		"???",
		"a1 b2 c3",
		"Grüße, wie geht's?",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "How do I reverse a string?", []string{"how", "do", "i", "reverse", "a", "string"}},
		{"empty", "   ???  ", nil},
		{"single", "help", []string{"help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokens(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
