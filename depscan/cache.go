package depscan

import (
	"fmt"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const scanCacheSize = 1024

type scanEntry struct {
	modTime time.Time
	decls   []Declaration
}

// Scanner extracts dependency declarations from files, caching parse results
// so headers shared by many tests are parsed once per change instead of once
// per test.
type Scanner struct {
	cache *lru.Cache[string, scanEntry]
}

// NewScanner creates a Scanner with an empty cache.
func NewScanner() (*Scanner, error) {
	cache, err := lru.New[string, scanEntry](scanCacheSize)
	if err != nil {
		return nil, err
	}
	return &Scanner{cache: cache}, nil
}

// Scan returns the dependency declarations of the file at path. Cached
// results are reused while the file's modification time is unchanged.
func (s *Scanner) Scan(path string) ([]Declaration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if entry, ok := s.cache.Get(path); ok && entry.modTime.Equal(info.ModTime()) {
		return entry.decls, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	decls, err := ScanSource(source)
	if err != nil {
		return nil, err
	}

	s.cache.Add(path, scanEntry{modTime: info.ModTime(), decls: decls})
	return decls, nil
}
