package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "driftkv-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// TempPath returns a path for a store file inside a fresh temp directory.
// The file itself is not created.
func TempPath(t *testing.T, name string) string {
	return filepath.Join(TempDir(t), name)
}
