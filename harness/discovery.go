package harness

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// CollectSources expands paths into test source files. A path already ending
// in the translation-unit extension is taken as a source directly; anything
// else is walked recursively. The result is sorted so batch order is
// deterministic.
func CollectSources(paths []string, sourceExt string) ([]string, error) {
	suffix := "." + sourceExt
	var sources []string

	for _, path := range paths {
		if strings.HasSuffix(path, suffix) {
			sources = append(sources, path)
			continue
		}

		err := filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(entry, suffix) {
				sources = append(sources, entry)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
	}

	sort.Strings(sources)
	return sources, nil
}
