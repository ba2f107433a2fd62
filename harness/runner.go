package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/attest/depscan"
)

// ErrNoSources indicates that discovery found nothing to test.
var ErrNoSources = errors.New("no source files found")

// ErrTestsFailed indicates that at least one executed test did not pass.
var ErrTestsFailed = errors.New("test batch failed")

const separator = "----------------------------------------------------------------------"

// Runner executes a batch of tests strictly sequentially: one test's
// resolve, build, run cycle completes fully before the next begins.
type Runner struct {
	cfg      Config
	resolver *depscan.Resolver
	out      io.Writer
}

// NewRunner creates a Runner writing progress and subprocess output to out.
func NewRunner(cfg Config, resolver *depscan.Resolver, out io.Writer) *Runner {
	return &Runner{cfg: cfg, resolver: resolver, out: out}
}

// RunBatch runs every source in order, honoring the halt-on-fail policy. The
// returned error is fatal (missing dependency, unreadable source); per-test
// failures are reported through the BatchResult instead.
func (r *Runner) RunBatch(ctx context.Context, sources []string) (BatchResult, error) {
	var batch BatchResult

	fmt.Fprintln(r.out, separator)

	for _, source := range sources {
		result, err := r.RunOne(ctx, source)
		if err != nil {
			return batch, err
		}

		batch.Results = append(batch.Results, result)

		if result.Outcome != OutcomePassed && r.cfg.HaltOnFail {
			batch.Halted = true
			break
		}
	}

	fmt.Fprintln(r.out, separator)
	switch {
	case batch.AllPassed():
		fmt.Fprintln(r.out, "All tests passed.")
	case batch.Halted:
		fmt.Fprintf(r.out, "Halted after %d of %d tests.\n", len(batch.Results), len(sources))
	default:
		fmt.Fprintf(r.out, "%d of %d tests failed.\n", batch.Failed(), len(batch.Results))
	}

	return batch, nil
}

// RunOne drives a single test through resolve, staleness check, build and
// execution, classifying the outcome.
func (r *Runner) RunOne(ctx context.Context, source string) (TestResult, error) {
	name := strings.TrimSuffix(source, filepath.Ext(source))
	result := TestResult{Name: name, Source: source}

	fmt.Fprintf(r.out, "testing %s > ", name)

	deps, err := r.resolver.Resolve(source)
	if err != nil {
		fmt.Fprintln(r.out)
		return result, err
	}

	if r.cfg.ShowDependencies {
		fmt.Fprintln(r.out)
		for _, dep := range depscan.SortedPaths(deps) {
			fmt.Fprintf(r.out, "    needs %s\n", dep)
		}
		fmt.Fprint(r.out, "    ")
	}

	artifact := artifactPath(r.cfg.BuildDir, source)

	stale, err := IsStale(artifact, deps, r.cfg.ForceRecompile)
	if err != nil {
		fmt.Fprintln(r.out)
		return result, err
	}

	if stale {
		fmt.Fprint(r.out, "compiling > ")
		build, err := Build(ctx, deps, artifact, r.cfg, r.out)
		if err != nil {
			fmt.Fprintln(r.out)
			return result, err
		}
		if !build.Succeeded {
			fmt.Fprintln(r.out, "FAILED!")
			result.Outcome = OutcomeCompileFailed
			return result, nil
		}
	}

	fmt.Fprint(r.out, "running > ")
	if err := r.execute(ctx, artifact); err != nil {
		fmt.Fprintln(r.out, "FAILED!")
		result.Outcome = OutcomeRunFailed
		return result, nil
	}

	fmt.Fprintln(r.out, "passed.")
	result.Outcome = OutcomePassed
	return result, nil
}

// execute runs the built artifact; a nonzero exit means the test failed.
func (r *Runner) execute(ctx context.Context, artifact string) error {
	runCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, exePath(artifact))
	cmd.Stdout = r.out
	cmd.Stderr = r.out
	return cmd.Run()
}
