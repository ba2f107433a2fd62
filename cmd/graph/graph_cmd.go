package graph

import (
	"fmt"

	"github.com/LegacyCodeHQ/attest/depscan"
	"github.com/LegacyCodeHQ/attest/harness"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

type graphOptions struct {
	includes        []string
	copyToClipboard bool
}

// Cmd represents the graph command.
var Cmd = NewCommand()

// NewCommand returns a new graph command instance.
func NewCommand() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph [paths...]",
		Short: "Print the include graph of test sources as Graphviz DOT",
		Long: `Resolve the include dependencies of every test source found under the
given paths (default: current directory) and print the resulting graph in
Graphviz DOT format. Test sources are highlighted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts, args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringSliceVarP(&opts.includes, "include", "i", nil, "Add an include search path (repeatable)")
	cmd.Flags().BoolVarP(&opts.copyToClipboard, "clipboard", "b", false, "Automatically copy output to clipboard")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *graphOptions, args []string) error {
	cfg := harness.DefaultConfig()
	cfg.IncludePaths = append(cfg.IncludePaths, opts.includes...)

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	sources, err := harness.CollectSources(roots, cfg.SourceExt)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return harness.ErrNoSources
	}

	scanner, err := depscan.NewScanner()
	if err != nil {
		return err
	}
	resolver := depscan.NewResolver(scanner, cfg.IncludePaths)

	g, err := resolver.Graph(sources)
	if err != nil {
		return fmt.Errorf("failed to build include graph: %w", err)
	}

	testFiles := make(map[string]bool, len(sources))
	for _, source := range sources {
		testFiles[source] = true
	}

	dot, err := FormatDOT(g, testFiles)
	if err != nil {
		return fmt.Errorf("failed to format graph: %w", err)
	}

	if opts.copyToClipboard {
		if err := clipboard.WriteAll(dot); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), dot)
	return nil
}
