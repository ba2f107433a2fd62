package run

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/LegacyCodeHQ/attest/depscan"
	"github.com/LegacyCodeHQ/attest/harness"
	"github.com/spf13/cobra"
)

type runOptions struct {
	clean          bool
	recompile      bool
	showDeps       bool
	compiler       string
	includes       []string
	macros         []string
	continueOnFail bool
	buildDir       string
	timeout        time.Duration
	watch          bool
}

// Cmd represents the run command.
var Cmd = NewCommand()

// NewCommand returns a new run command instance.
func NewCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Resolve, build and run C++ tests",
		Long: `Run every test source found under the given paths (default: current
directory). A path ending in the translation-unit extension is taken as a
single test; directories are searched recursively.

Each test's include dependencies are resolved transitively; the test is only
recompiled when its artifact is missing or older than one of its
dependencies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&opts.clean, "clean", false, "Remove the build output directory before running")
	cmd.Flags().BoolVarP(&opts.recompile, "recompile", "r", false, "Force rebuild of every test regardless of staleness")
	cmd.Flags().BoolVarP(&opts.showDeps, "show-dependencies", "d", false, "Print each resolved dependency before build/run")
	cmd.Flags().StringVarP(&opts.compiler, "compiler", "c", "", "Override the compiler executable name")
	cmd.Flags().StringSliceVarP(&opts.includes, "include", "i", nil, "Add an include search path (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.macros, "macro", "m", nil, "Add a preprocessor macro definition (repeatable)")
	cmd.Flags().BoolVar(&opts.continueOnFail, "continue-on-fail", false, "Do not halt the batch after the first failing test")
	cmd.Flags().StringVar(&opts.buildDir, "build-dir", "", "Override the build output directory")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Limit each compile/run subprocess (0 = no limit)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-run the batch when a source file changes")

	return cmd
}

func runTests(cmd *cobra.Command, opts *runOptions, args []string) error {
	cfg := buildConfig(opts)

	if opts.clean {
		if err := os.RemoveAll(cfg.BuildDir); err != nil {
			return fmt.Errorf("failed to clean build directory: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "-- clean build --")
	}

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

	if err := os.MkdirAll(cfg.BuildDir, 0o755); err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}

	scanner, err := depscan.NewScanner()
	if err != nil {
		return err
	}
	resolver := depscan.NewResolver(scanner, cfg.IncludePaths)
	runner := harness.NewRunner(cfg, resolver, cmd.OutOrStdout())

	if opts.watch {
		return watchTests(cmd, runner, roots, cfg)
	}

	batch, err := runner.RunBatch(cmd.Context(), sources)
	if err != nil {
		return err
	}
	if !batch.AllPassed() {
		return harness.ErrTestsFailed
	}
	return nil
}

// buildConfig turns defaults plus flag overrides into the immutable config
// value every component consumes.
func buildConfig(opts *runOptions) harness.Config {
	cfg := harness.DefaultConfig()

	if opts.compiler != "" {
		cfg.Compiler = opts.compiler
	}
	if opts.buildDir != "" {
		cfg.BuildDir = opts.buildDir
	}
	cfg.IncludePaths = append(cfg.IncludePaths, opts.includes...)
	cfg.Macros = append(cfg.Macros, opts.macros...)
	cfg.ForceRecompile = opts.recompile
	cfg.ShowDependencies = opts.showDeps
	cfg.HaltOnFail = !opts.continueOnFail
	cfg.Timeout = opts.timeout

	return cfg
}

func watchTests(cmd *cobra.Command, runner *harness.Runner, roots []string, cfg harness.Config) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var mu sync.Mutex
	rerun := func() {
		mu.Lock()
		defer mu.Unlock()

		sources, err := harness.CollectSources(roots, cfg.SourceExt)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "source discovery error: %v\n", err)
			return
		}
		if len(sources) == 0 {
			return
		}
		if _, err := runner.RunBatch(ctx, sources); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "run error: %v\n", err)
		}
	}

	rerun()
	fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes. Press Ctrl+C to stop.")
	return watchAndRerun(ctx, cmd, roots, rerun)
}
