package encoding

import (
	"log/slog"

	"transcode/internal/logging"
)

// fileState tracks one file through Pending, PathResolved, FirstPass,
// MainPass, and one of Done, Skipped, or Failed.
type fileState string

const (
	statePending      fileState = "pending"
	statePathResolved fileState = "path_resolved"
	stateFirstPass    fileState = "first_pass"
	stateMainPass     fileState = "main_pass"
	stateDone         fileState = "done"
	stateSkipped      fileState = "skipped"
	stateFailed       fileState = "failed"
)

type stateTracker struct {
	logger *slog.Logger
	state  fileState
}

func newStateTracker(logger *slog.Logger) *stateTracker {
	return &stateTracker{logger: logger, state: statePending}
}

func (t *stateTracker) to(next fileState) {
	t.logger.Debug("file state changed",
		logging.String("from", string(t.state)),
		logging.String("to", string(next)),
	)
	t.state = next
}
