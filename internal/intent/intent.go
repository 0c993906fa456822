// Package intent implements rule-based short-circuiting for conversational
// boilerplate. Classification is a static keyword lookup over normalized
// text: no store access, no model calls, deterministic and side-effect-free.
package intent

import "strings"

// Intent is a fixed conversational category answered without consulting the
// knowledge store or the external generator.
type Intent int

// Intents form a closed enumeration. Rule order, not enumeration order,
// decides match priority; see DefaultRules.
const (
	Unknown Intent = iota
	Greeting
	Farewell
	Thanks
	Identity
	Help
)

// String returns the lowercase name of the intent.
func (i Intent) String() string {
	switch i {
	case Greeting:
		return "greeting"
	case Farewell:
		return "farewell"
	case Thanks:
		return "thanks"
	case Identity:
		return "identity"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// Rule associates an intent with the normalized keyword phrases that
// trigger it. Rules are static configuration, immutable at runtime.
type Rule struct {
	Intent   Intent
	Patterns []string
	Reply    string
}

// DefaultRules returns the built-in rule set in priority order. The first
// rule whose pattern set matches wins.
//
// Patterns must already be in normalized form (see textnorm.Normalize);
// Classify matches them against normalized input only.
func DefaultRules() []Rule {
	return []Rule{
		{
			Intent: Greeting,
			Patterns: []string{
				"hello", "hi", "hey", "good morning", "good evening",
				"good afternoon", "morning", "evening", "afternoon",
				"hy", "hy there", "wassup", "howdy",
			},
			Reply: "Hello! How can I help you today?",
		},
		{
			Intent: Farewell,
			Patterns: []string{
				"bye", "goodbye", "see you", "take care", "later", "by",
				"exit", "quit", "leave",
			},
			Reply: "Goodbye! Have a great day!",
		},
		{
			Intent: Thanks,
			Patterns: []string{
				"thanks", "thank you", "thx", "thank u", "appreciate it",
				"thankyou", "thnx",
			},
			Reply: "You're welcome!",
		},
		{
			Intent: Identity,
			Patterns: []string{
				"who are you", "what are you", "who r u", "what r u",
				"tell me about yourself", "introduce yourself", "about you",
			},
			Reply: "I'm a chatbot that learns from conversations. I save questions I don't know and improve over time. Feel free to teach me anything!",
		},
		{
			Intent: Help,
			Patterns: []string{
				"help", "can you help", "i need help", "please help",
				"assist me", "help me", "help please", "need assistance",
			},
			Reply: "I'm here to help! Ask me questions on any topic. Answers I already know are instant, and I learn the ones I don't.",
		},
	}
}

// Classifier tests normalized text against an ordered rule set.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier with the given rules. A nil or empty rule slice
// falls back to DefaultRules.
func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the first intent whose pattern set matches the normalized
// text, or Unknown when no rule matches. Matching is whole-word containment:
// a pattern matches only when it appears delimited by word boundaries, so
// "by" does not fire inside "goodbye".
func (c *Classifier) Classify(normalized string) Intent {
	if normalized == "" {
		return Unknown
	}
	for _, rule := range c.rules {
		for _, pattern := range rule.Patterns {
			if containsPhrase(normalized, pattern) {
				return rule.Intent
			}
		}
	}
	return Unknown
}

// Reply returns the canned reply for a matched intent. It returns the empty
// string for Unknown or for intents absent from the rule set.
func (c *Classifier) Reply(i Intent) string {
	for _, rule := range c.rules {
		if rule.Intent == i {
			return rule.Reply
		}
	}
	return ""
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments must be normalized, so tokens are separated by single
// spaces and padding with spaces gives exact word-boundary semantics.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
