package depscan

import (
	"os"
	"path/filepath"
	"sort"
)

// Resolver computes the transitive dependency closure of test sources.
// Declared paths are resolved against the declaring file's directory and a
// fixed list of search paths.
type Resolver struct {
	scanner     *Scanner
	searchPaths []string
}

// NewResolver creates a Resolver that consults searchPaths, in order, for
// declared paths that cannot be found next to the declaring file.
func NewResolver(scanner *Scanner, searchPaths []string) *Resolver {
	return &Resolver{scanner: scanner, searchPaths: searchPaths}
}

// Resolve returns every file reachable from root through dependency
// declarations, including root itself. Declared paths that cannot be located
// on disk are kept as written; whether that is fatal is the caller's call.
// A nonexistent root yields the empty set. Cycles and diamond-shaped include
// relations are handled by the visited set: a path is never descended twice.
func (r *Resolver) Resolve(root string) (map[string]bool, error) {
	result := make(map[string]bool)
	if !fileExists(root) {
		return result, nil
	}

	visited := make(map[string]bool)
	work := []string{root}

	for len(work) > 0 {
		current := work[len(work)-1]
		work = work[:len(work)-1]

		if visited[current] || !fileExists(current) {
			continue
		}
		visited[current] = true

		decls, err := r.scanner.Scan(current)
		if err != nil {
			return nil, err
		}

		for _, decl := range decls {
			dep := r.resolvePath(current, decl.Path)
			result[dep] = true
			if !visited[dep] {
				work = append(work, dep)
			}
		}
	}

	result[root] = true
	return result, nil
}

// resolvePath locates a declared path on disk: as written first, then
// relative to the declaring file's directory, then against each search path
// in order. Unresolvable paths are returned as written.
func (r *Resolver) resolvePath(declaringFile, raw string) string {
	if fileExists(raw) {
		return raw
	}

	local := filepath.Join(filepath.Dir(declaringFile), raw)
	if fileExists(local) {
		return local
	}

	for _, searchPath := range r.searchPaths {
		candidate := filepath.Join(searchPath, raw)
		if fileExists(candidate) {
			return candidate
		}
	}

	return raw
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SortedPaths returns the members of a path set in lexical order.
func SortedPaths(set map[string]bool) []string {
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
