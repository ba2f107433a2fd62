package harness

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/LegacyCodeHQ/attest/depscan"
	"github.com/stretchr/testify/require"
)

// stubCompilerScript fakes a compiler for tests. It logs every invocation,
// then writes a small shell script as the artifact. Marker comments in the
// first translation unit steer its behavior:
//   - COMPILE_FAIL: exit without producing an artifact
//   - RUN_FAIL:     produce an artifact that exits 1
//   - WARN_EXIT:    produce a good artifact but exit nonzero ourselves
const stubCompilerScript = `#!/bin/sh
echo compile >> "$(dirname "$0")/compile.log"
out=""
prev=""
first_src=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then out="$arg"; fi
  case "$arg" in
    *.cpp) [ -z "$first_src" ] && first_src="$arg" ;;
  esac
  prev="$arg"
done
if [ -n "$first_src" ] && grep -q COMPILE_FAIL "$first_src"; then
  exit 1
fi
code=0
if [ -n "$first_src" ] && grep -q RUN_FAIL "$first_src"; then
  code=1
fi
printf '#!/bin/sh\nexit %s\n' "$code" > "$out"
chmod +x "$out"
if [ -n "$first_src" ] && grep -q WARN_EXIT "$first_src"; then
  exit 1
fi
exit 0
`

func writeStubCompiler(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler requires a POSIX shell")
	}

	path := filepath.Join(dir, "stubcc")
	require.NoError(t, os.WriteFile(path, []byte(stubCompilerScript), 0o755))
	return path
}

func compileCount(t *testing.T, stub string) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(stub), "compile.log"))
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(data), "\n")
}

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// backdate pushes a file's modification time into the past so artifacts
// built afterwards compare strictly newer even on coarse filesystems.
func backdate(t *testing.T, path string) {
	t.Helper()
	past := time.Now().Add(-5 * time.Second)
	require.NoError(t, os.Chtimes(path, past, past))
}

func testConfig(t *testing.T, dir string) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Compiler = writeStubCompiler(t, dir)
	cfg.BuildDir = filepath.Join(dir, "build")
	cfg.IncludePaths = nil
	cfg.Macros = nil
	require.NoError(t, os.MkdirAll(cfg.BuildDir, 0o755))
	return cfg
}

func newTestRunner(t *testing.T, cfg Config, out *strings.Builder) *Runner {
	t.Helper()
	scanner, err := depscan.NewScanner()
	require.NoError(t, err)
	resolver := depscan.NewResolver(scanner, cfg.IncludePaths)
	return NewRunner(cfg, resolver, out)
}
