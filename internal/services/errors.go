package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathNotFound         = errors.New("path not found")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrEngineFailure        = errors.New("engine failure")
	ErrProbeFailure         = errors.New("probe failure")
	ErrLocked               = errors.New("destination locked")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrEngineFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category names the failure class of err for summaries and exit messages.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrPathNotFound):
		return "path not found"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid configuration"
	case errors.Is(err, ErrProbeFailure):
		return "probe failure"
	case errors.Is(err, ErrLocked):
		return "locked"
	default:
		return "engine failure"
	}
}

// ExitMessage renders err the way the CLI prints it to stderr.
func ExitMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "operation aborted"
	}
	return err.Error()
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
