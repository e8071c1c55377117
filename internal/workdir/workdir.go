// Package workdir sweeps the temp directory for two-pass statistics left
// behind by runs that were killed before they could clean up.
package workdir

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transcode/internal/logging"
)

// PassLogPrefix starts every two-pass statistics file name.
const PassLogPrefix = "transcode-2pass-"

// CleanResult contains the outcome of a cleanup.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes two-pass statistics files in dir older than maxAge.
// A zero maxAge removes all of them.
func CleanStale(dir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), PassLogPrefix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if maxAge > 0 && !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale pass log", "workdir_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed stale pass log",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
			logging.String(logging.FieldEventType, "workdir_cleanup"),
		)
	}
	return result
}
