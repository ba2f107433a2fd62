package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch_AllPass(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	first := createFile(t, dir, "alpha_test.cpp", "int main() { return 0; }\n")
	second := createFile(t, dir, "beta_test.cpp", "int main() { return 0; }\n")

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	batch, err := runner.RunBatch(context.Background(), []string{first, second})

	require.NoError(t, err)
	assert.True(t, batch.AllPassed())
	assert.False(t, batch.Halted)
	assert.Len(t, batch.Results, 2)
	assert.Contains(t, out.String(), "All tests passed.")
	assert.Contains(t, out.String(), "passed.")
}

func TestRunBatch_HaltsOnFirstFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	failing := createFile(t, dir, "a_fail_test.cpp", "// RUN_FAIL\n")
	passing := createFile(t, dir, "b_pass_test.cpp", "int main() { return 0; }\n")

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	batch, err := runner.RunBatch(context.Background(), []string{failing, passing})

	require.NoError(t, err)
	assert.True(t, batch.Halted)
	assert.False(t, batch.AllPassed())
	require.Len(t, batch.Results, 1)
	assert.Equal(t, OutcomeRunFailed, batch.Results[0].Outcome)
	assert.Contains(t, out.String(), "Halted after 1 of 2 tests.")

	// The second test never ran, so its artifact was never built.
	_, statErr := os.Stat(filepath.Join(cfg.BuildDir, "b_pass_test"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBatch_ContinueOnFail_RunsEveryTest(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.HaltOnFail = false
	failing := createFile(t, dir, "a_fail_test.cpp", "// RUN_FAIL\n")
	passing := createFile(t, dir, "b_pass_test.cpp", "int main() { return 0; }\n")

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	batch, err := runner.RunBatch(context.Background(), []string{failing, passing})

	require.NoError(t, err)
	assert.False(t, batch.Halted)
	assert.False(t, batch.AllPassed())
	assert.Len(t, batch.Results, 2)
	assert.Equal(t, 1, batch.Failed())
	assert.Contains(t, out.String(), "1 of 2 tests failed.")
}

func TestRunBatch_CompileFailure_DoesNotExecuteArtifact(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	broken := createFile(t, dir, "broken_test.cpp", "// COMPILE_FAIL\n")

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	batch, err := runner.RunBatch(context.Background(), []string{broken})

	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	assert.Equal(t, OutcomeCompileFailed, batch.Results[0].Outcome)
	assert.NotContains(t, out.String(), "running >")
}

func TestRunBatch_SecondRunSkipsCompilation(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	source := createFile(t, dir, "cached_test.cpp", "int main() { return 0; }\n")
	backdate(t, source)

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	_, err := runner.RunBatch(context.Background(), []string{source})
	require.NoError(t, err)
	require.Equal(t, 1, compileCount(t, cfg.Compiler))

	_, err = runner.RunBatch(context.Background(), []string{source})
	require.NoError(t, err)
	assert.Equal(t, 1, compileCount(t, cfg.Compiler), "unchanged source must reuse the artifact")
}

func TestRunBatch_TouchedHeaderRecompilesOnlyDependents(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	header := createFile(t, dir, "common.h", "")
	dependent := createFile(t, dir, "uses_header_test.cpp", `#include "common.h"`+"\n")
	standalone := createFile(t, dir, "standalone_test.cpp", "int main() { return 0; }\n")
	backdate(t, header)
	backdate(t, dependent)
	backdate(t, standalone)

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	_, err := runner.RunBatch(context.Background(), []string{dependent, standalone})
	require.NoError(t, err)
	require.Equal(t, 2, compileCount(t, cfg.Compiler))

	standaloneArtifact := filepath.Join(cfg.BuildDir, "standalone_test")
	before, err := os.Stat(standaloneArtifact)
	require.NoError(t, err)

	future := time.Now().Add(5 * time.Second)
	require.NoError(t, os.Chtimes(header, future, future))

	_, err = runner.RunBatch(context.Background(), []string{dependent, standalone})
	require.NoError(t, err)
	assert.Equal(t, 3, compileCount(t, cfg.Compiler), "only the dependent test recompiles")

	after, err := os.Stat(standaloneArtifact)
	require.NoError(t, err)
	assert.True(t, before.ModTime().Equal(after.ModTime()), "unrelated artifact must stay untouched")
}

func TestRunBatch_MissingDependency_AbortsRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	header := createFile(t, dir, "vanishing.h", "")
	source := createFile(t, dir, "fragile_test.cpp", `#include "vanishing.h"`+"\n")
	backdate(t, header)
	backdate(t, source)

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	_, err := runner.RunBatch(context.Background(), []string{source})
	require.NoError(t, err)

	// With the artifact in place, a deleted dependency is a broken source
	// tree and must abort the whole run.
	require.NoError(t, os.Remove(header))

	_, err = runner.RunBatch(context.Background(), []string{source})
	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	// The deleted header can no longer be resolved, so the error carries
	// the path as written in the declaration.
	assert.Equal(t, "vanishing.h", missing.Path)
}

func TestRunOne_ShowDependencies_PrintsResolvedSet(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.ShowDependencies = true
	header := createFile(t, dir, "shown.h", "")
	source := createFile(t, dir, "show_test.cpp", `#include "shown.h"`+"\n")

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	result, err := runner.RunOne(context.Background(), source)

	require.NoError(t, err)
	assert.Equal(t, OutcomePassed, result.Outcome)
	assert.Contains(t, out.String(), "needs "+header)
	assert.Contains(t, out.String(), "needs "+source)
}

func TestRunOne_Timeout_FailsHungTest(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Timeout = 100 * time.Millisecond
	source := createFile(t, dir, "hang_test.cpp", "int main() { for (;;) {} }\n")
	backdate(t, source)

	// Pre-built artifact newer than its source, so the runner goes straight
	// to execution.
	artifact := filepath.Join(cfg.BuildDir, "hang_test")
	require.NoError(t, os.WriteFile(artifact, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	start := time.Now()
	result, err := runner.RunOne(context.Background(), source)

	require.NoError(t, err)
	assert.Equal(t, OutcomeRunFailed, result.Outcome)
	assert.Less(t, time.Since(start), 5*time.Second, "hung test must be killed by the timeout")
}

func TestRunBatch_ForceRecompile_IgnoresFreshArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	source := createFile(t, dir, "forced_test.cpp", "int main() { return 0; }\n")
	backdate(t, source)

	var out strings.Builder
	runner := newTestRunner(t, cfg, &out)

	_, err := runner.RunBatch(context.Background(), []string{source})
	require.NoError(t, err)

	cfg.ForceRecompile = true
	forced := newTestRunner(t, cfg, &out)

	_, err = forced.RunBatch(context.Background(), []string{source})
	require.NoError(t, err)
	assert.Equal(t, 2, compileCount(t, cfg.Compiler))
}
