package cmd

import (
	"testing"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"serve":   false,
		"ask":     false,
		"teach":   false,
		"version": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestTeachArgValidation(t *testing.T) {
	t.Cleanup(func() { teachVerifyOnly = false })

	teachVerifyOnly = false
	if err := teachCmd.Args(teachCmd, []string{"question only"}); err == nil {
		t.Error("teach accepted a single arg without --verify")
	}
	if err := teachCmd.Args(teachCmd, []string{"q", "a"}); err != nil {
		t.Errorf("teach rejected question+answer: %v", err)
	}

	teachVerifyOnly = true
	if err := teachCmd.Args(teachCmd, []string{"q"}); err != nil {
		t.Errorf("teach --verify rejected single arg: %v", err)
	}
	if err := teachCmd.Args(teachCmd, []string{"q", "a"}); err == nil {
		t.Error("teach --verify accepted two args")
	}
}
