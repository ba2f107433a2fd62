package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/LegacyCodeHQ/attest/depscan"
)

// BuildResult reports whether a compilation produced an artifact.
type BuildResult struct {
	Succeeded bool
}

// Build compiles the dependency closure of a test into artifact. Any
// pre-existing artifact is removed first so a failed compile can never leave
// a stale binary that looks fresh. Success is judged solely by whether the
// artifact exists afterwards: a compiler that warns, or exits nonzero but
// still emits the binary, counts as success.
func Build(ctx context.Context, deps map[string]bool, artifact string, cfg Config, output io.Writer) (BuildResult, error) {
	if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
		return BuildResult{}, fmt.Errorf("failed to remove artifact %s: %w", artifact, err)
	}

	runCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, cfg.Compiler, compileArgs(deps, artifact, cfg)...)
	cmd.Stdout = output
	cmd.Stderr = output

	// The compiler's exit status is deliberately ignored; the artifact on
	// disk is the only success signal.
	_ = cmd.Run()

	_, err := os.Stat(artifact)
	return BuildResult{Succeeded: err == nil}, nil
}

// compileArgs assembles the compiler invocation: configured options, one -D
// per macro, one -I per include path, every dependency that is a translation
// unit, and the artifact output path. Headers are tracked for staleness but
// never handed to the compiler.
func compileArgs(deps map[string]bool, artifact string, cfg Config) []string {
	args := append([]string(nil), cfg.CompilerOptions...)

	for _, macro := range cfg.Macros {
		if macro != "" {
			args = append(args, "-D"+macro)
		}
	}

	for _, includePath := range cfg.IncludePaths {
		if includePath != "" {
			args = append(args, "-I", includePath)
		}
	}

	for _, dep := range depscan.SortedPaths(deps) {
		if strings.HasSuffix(dep, "."+cfg.SourceExt) {
			args = append(args, dep)
		}
	}

	return append(args, "-o", artifact)
}
