package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and any missing parents, holding size filler bytes.
// Sizes below one are written as a single byte so the file is never empty.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, max(size, 1)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MediaTree lays out placeholder sources under root, one per slash-separated
// relative path, and returns their absolute paths in argument order.
func MediaTree(t testing.TB, root string, rel ...string) []string {
	t.Helper()
	paths := make([]string, len(rel))
	for i, r := range rel {
		paths[i] = filepath.Join(root, filepath.FromSlash(r))
		WriteFile(t, paths[i], 64)
	}
	return paths
}
