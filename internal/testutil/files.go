package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// WriteFile creates path (and its parents) with sizeBytes zero bytes and the
// given modification time.
func WriteFile(t *testing.T, fs afero.Fs, path string, sizeBytes int, modified time.Time) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, make([]byte, sizeBytes), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := fs.Chtimes(path, modified, modified); err != nil {
		t.Fatalf("failed to set times on %s: %v", path, err)
	}
}

// MkdirAll creates each directory or fails the test.
func MkdirAll(t *testing.T, fs afero.Fs, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
}

// Exists reports whether path exists.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// Chdir switches the working directory to dir for the rest of the test and
// returns the resolved directory. Tests using it must not run in parallel.
func Chdir(t *testing.T, dir string) string {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to read working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to read working directory: %v", err)
	}
	return cwd
}
