package intent

import (
	"testing"

	"github.com/ronak026/chatbot/internal/textnorm"
)

func TestClassify(t *testing.T) {
	c := New(nil)

	tests := []struct {
		input string
		want  Intent
	}{
		{"hello", Greeting},
		{"hey there friend", Greeting},
		{"good morning everyone", Greeting},
		{"bye", Farewell},
		{"ok goodbye then", Farewell},
		{"thank you so much", Thanks},
		{"thx", Thanks},
		{"who are you", Identity},
		{"tell me about yourself", Identity},
		{"i need help with something", Help},
		{"what is the capital of france", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.Classify(textnorm.Normalize(tt.input))
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Patterns match whole words only. "by" must not fire inside "bypass", and
// "hy" must not fire inside "hypothesis".
func TestClassifyWordBoundaries(t *testing.T) {
	c := New(nil)

	tests := []struct {
		input string
		want  Intent
	}{
		{"how do i bypass a proxy", Unknown},
		{"explain the riemann hypothesis", Unknown},
		{"what does hitherto mean", Unknown},
		{"located by the river", Farewell}, // "by" is a declared farewell keyword
	}

	for _, tt := range tests {
		if got := c.Classify(textnorm.Normalize(tt.input)); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// The first rule in declared order wins when several rules could match.
func TestClassifyPriorityOrder(t *testing.T) {
	c := New(nil)

	// "hello" (greeting) and "bye" (farewell) both present; greeting is
	// declared first.
	if got := c.Classify("hello and bye"); got != Greeting {
		t.Errorf("Classify(%q) = %v, want %v", "hello and bye", got, Greeting)
	}

	// "thanks" (thanks) and "help" (help): thanks is declared first.
	if got := c.Classify("thanks for the help"); got != Thanks {
		t.Errorf("Classify(%q) = %v, want %v", "thanks for the help", got, Thanks)
	}
}

func TestReply(t *testing.T) {
	c := New(nil)

	for _, i := range []Intent{Greeting, Farewell, Thanks, Identity, Help} {
		if c.Reply(i) == "" {
			t.Errorf("Reply(%v) is empty", i)
		}
	}
	if got := c.Reply(Unknown); got != "" {
		t.Errorf("Reply(Unknown) = %q, want empty", got)
	}
}

func TestCustomRules(t *testing.T) {
	c := New([]Rule{
		{Intent: Help, Patterns: []string{"sos"}, Reply: "On my way."},
	})

	if got := c.Classify("sos"); got != Help {
		t.Errorf("Classify(sos) = %v, want %v", got, Help)
	}
	if got := c.Classify("hello"); got != Unknown {
		t.Errorf("Classify(hello) with custom rules = %v, want Unknown", got)
	}
	if got := c.Reply(Help); got != "On my way." {
		t.Errorf("Reply(Help) = %q, want %q", got, "On my way.")
	}
}

func TestIntentString(t *testing.T) {
	tests := map[Intent]string{
		Unknown:  "unknown",
		Greeting: "greeting",
		Farewell: "farewell",
		Thanks:   "thanks",
		Identity: "identity",
		Help:     "help",
	}
	for i, want := range tests {
		if got := i.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(i), got, want)
		}
	}
}
