package harness

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactPath_StripsSourceExtension(t *testing.T) {
	got := artifactPath(filepath.Join("..", "build_test"), filepath.Join("test", "angle_test.cpp"))

	want := filepath.Join("..", "build_test", "angle_test")
	if runtime.GOOS == "windows" {
		want += ".exe"
	}
	assert.Equal(t, want, got)
}

func TestArtifactPath_IgnoresSourceDirectory(t *testing.T) {
	first := artifactPath("build", filepath.Join("a", "x_test.cpp"))
	second := artifactPath("build", filepath.Join("b", "x_test.cpp"))

	// Artifacts are keyed by basename only; colliding test names map to the
	// same artifact.
	assert.Equal(t, first, second)
}
