package harness

import (
	"fmt"
	"os"

	"github.com/LegacyCodeHQ/attest/depscan"
)

// MissingDependencyError reports a dependency that does not exist on disk at
// staleness-check time. It indicates a broken source tree rather than a
// failing test, so it aborts the whole run.
type MissingDependencyError struct {
	Path string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("dependency %s could not be found", e.Path)
}

// IsStale reports whether artifact must be rebuilt from deps. A forced
// rebuild or a missing artifact is stale unconditionally. Otherwise the
// artifact is stale as soon as one dependency was modified after the artifact
// was written; the check short-circuits on the first stale dependency.
func IsStale(artifact string, deps map[string]bool, force bool) (bool, error) {
	if force {
		return true, nil
	}

	artifactInfo, err := os.Stat(artifact)
	if err != nil {
		return true, nil
	}

	for _, path := range depscan.SortedPaths(deps) {
		depInfo, err := os.Stat(path)
		if err != nil {
			return false, &MissingDependencyError{Path: path}
		}
		if depInfo.ModTime().After(artifactInfo.ModTime()) {
			return true, nil
		}
	}

	return false, nil
}
