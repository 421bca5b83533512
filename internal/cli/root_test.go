package cli

import (
	"io"
	"testing"
)

// TestExecute checks the command tree is wired and help renders without
// panicking. The commands themselves are covered by their own tests.
func TestExecute(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Execute() panicked: %v", r)
		}
	}()

	RootCmd.SetOut(io.Discard)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs([]string{"--help"})

	if err := Execute(); err != nil {
		t.Errorf("Execute() with --help returned error: %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	expected := []string{"get", "post", "put", "delete", "head", "run", "test", "history"}

	registered := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expected {
		if !registered[name] {
			t.Errorf("Expected command %q to be registered", name)
		}
	}
}
