// Package runlock keeps two runs from writing into the same output path at
// once.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"transcode/internal/services"
)

// Lock is a held destination lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// PathFor returns the lock file used for output. The name is derived from the
// absolute output path so equivalent spellings share a lock.
func PathFor(dir, output string) (string, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(abs)))
	return filepath.Join(dir, "transcode-"+id.String()+".lock"), nil
}

// Acquire takes the lock for output without blocking. It fails with
// services.ErrLocked when another process holds it.
func Acquire(dir, output string) (*Lock, error) {
	path, err := PathFor(dir, output)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidConfiguration, "runlock", "acquire", output, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrInvalidConfiguration, "runlock", "acquire", dir, err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrLocked, "runlock", "acquire", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "runlock", "acquire",
			fmt.Sprintf("another run is writing to %s", output), nil)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks. The lock file is left in place so a concurrent
// acquirer never locks an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
