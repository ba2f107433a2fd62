package harness

import (
	"path/filepath"
	"runtime"
	"strings"
)

// artifactPath returns the build output path for a test source. Artifacts
// are keyed by source basename alone, so two tests with the same file name
// in different directories share one artifact. Windows artifacts carry an
// .exe suffix so the shell can execute them directly.
func artifactPath(buildDir, source string) string {
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(buildDir, name)
}

// exePath normalizes an artifact path for execution, using the platform's
// separators so it also works under cmd.exe.
func exePath(artifact string) string {
	return filepath.FromSlash(artifact)
}
