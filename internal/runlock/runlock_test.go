package runlock_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"transcode/internal/runlock"
	"transcode/internal/services"
)

func TestAcquireRejectsSecondHolder(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "library")

	first, err := runlock.Acquire(dir, out)
	if err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}
	if _, err := runlock.Acquire(dir, out+string(filepath.Separator)); !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if _, err := os.Stat(first.Path()); err != nil {
		t.Fatalf("lock file missing after release: %v", err)
	}

	again, err := runlock.Acquire(dir, out)
	if err != nil {
		t.Fatalf("Acquire after release returned error: %v", err)
	}
	t.Cleanup(func() { _ = again.Release() })
}

func TestDistinctOutputsDoNotConflict(t *testing.T) {
	dir := t.TempDir()
	a, err := runlock.Acquire(dir, "/srv/media/a")
	if err != nil {
		t.Fatalf("Acquire a: %v", err)
	}
	defer a.Release()
	b, err := runlock.Acquire(dir, "/srv/media/b")
	if err != nil {
		t.Fatalf("Acquire b: %v", err)
	}
	defer b.Release()
	if a.Path() == b.Path() {
		t.Fatalf("distinct outputs share lock %s", a.Path())
	}
}
