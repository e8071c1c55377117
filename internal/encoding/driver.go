package encoding

import (
	"context"
	"errors"
	"log/slog"

	"transcode/internal/engine"
	"transcode/internal/logging"
	"transcode/internal/services"
)

// Engine runs the audio/video engine for one invocation. Implementations
// must remove output when they fail.
type Engine interface {
	Run(ctx context.Context, input, output string, flags []string, opts ...engine.RunOption) error
}

// ImageEngine converts one still image at a 0-100 quality.
type ImageEngine interface {
	Convert(ctx context.Context, input, output string, quality int) error
}

// Prober answers per-file questions asked while building arguments.
type Prober interface {
	// Duration returns the media duration in whole seconds.
	Duration(ctx context.Context, path string) (int, error)
	ChannelCount(ctx context.Context, path string) (int, error)
	// CropSuggestion returns a "w:h:x:y" rectangle, or "" for no crop.
	CropSuggestion(ctx context.Context, path string) (string, error)
}

// Observer is notified as each file starts and finishes. Calls arrive from
// worker goroutines concurrently.
type Observer interface {
	FileStarted(kind Kind, source string)
	FileFinished(result FileResult)
}

// Option customizes a driver.
type Option func(*driverOptions)

type driverOptions struct {
	logger    *slog.Logger
	observers []Observer
	newID     func() string
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *driverOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer for per-file notifications.
func WithObserver(observer Observer) Option {
	return func(o *driverOptions) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithIDGenerator replaces the generator for two-pass log names.
func WithIDGenerator(fn func() string) Option {
	return func(o *driverOptions) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func buildDriverOptions(kind Kind, opts []Option) driverOptions {
	o := driverOptions{logger: logging.NewNop(), newID: newPassLogID}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.logger = logging.NewComponentLogger(o.logger, string(kind))
	return o
}

// fileLogger returns a logger tagged with the run context and source file.
func (o driverOptions) fileLogger(ctx context.Context, source string) *slog.Logger {
	return logging.WithContext(services.WithSource(ctx, source), o.logger)
}

// engineError marks err as an engine failure unless it already carries a
// classification or is a cancellation.
func engineError(kind Kind, label, source string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, services.ErrEngineFailure), errors.Is(err, services.ErrInvalidConfiguration):
		return err
	default:
		return services.Wrap(services.ErrEngineFailure, string(kind), label, source, err)
	}
}
