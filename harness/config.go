// Package harness drives the per-test resolve, staleness check, build, run
// cycle and aggregates batch results.
package harness

import "time"

// Config carries the process-wide settings for one invocation. It is
// assembled once by the CLI layer and treated as read-only by every component
// below it.
type Config struct {
	Compiler        string
	CompilerOptions []string
	Macros          []string
	IncludePaths    []string
	BuildDir        string
	// SourceExt is the translation-unit extension, without the leading dot.
	SourceExt        string
	ForceRecompile   bool
	ShowDependencies bool
	HaltOnFail       bool
	// Timeout bounds each compiler and test subprocess; zero means no limit.
	Timeout time.Duration
}

// DefaultConfig returns the stock g++ configuration.
func DefaultConfig() Config {
	return Config{
		Compiler: "g++",
		CompilerOptions: []string{
			"-std=c++14", "-O3", "-Wall", "-Wextra", "-Wpedantic", "-Wno-unknown-pragmas",
		},
		Macros:       []string{"NO_DEBUG", "NDEBUG"},
		IncludePaths: []string{"../include", "../src"},
		BuildDir:     "../build_test",
		SourceExt:    "cpp",
		HaltOnFail:   true,
	}
}
