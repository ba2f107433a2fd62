package cmd

import "testing"

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"run", "graph"} {
		if !names[want] {
			t.Fatalf("expected %q subcommand to be registered", want)
		}
	}
}
