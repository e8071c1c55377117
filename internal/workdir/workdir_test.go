package workdir

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"transcode/internal/testsupport"
)

func TestCleanStaleRemovesOnlyOldPassLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, PassLogPrefix+"aaa-0.log")
	fresh := filepath.Join(dir, PassLogPrefix+"bbb-0.log")
	other := filepath.Join(dir, "unrelated.log")
	for _, path := range []string{old, fresh, other} {
		testsupport.WriteFile(t, path, 8)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(other, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(dir, 24*time.Hour, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("removed = %q, want only %q", result.Removed, old)
	}
	for _, path := range []string{fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s should remain: %v", path, err)
		}
	}

	if all := CleanStale(dir, 0, nil); len(all.Removed) != 1 || all.Removed[0] != fresh {
		t.Fatalf("zero max age removed %q", all.Removed)
	}
}

func TestCleanStaleMissingDir(t *testing.T) {
	result := CleanStale(filepath.Join(t.TempDir(), "missing"), time.Hour, nil)
	if len(result.Removed) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
