package engine

import (
	"time"
)

// Progress is a snapshot reported by ffmpeg's -progress output.
type Progress struct {
	// Label identifies the invocation, e.g. "pass 1".
	Label   string
	OutTime time.Duration
	Speed   float64
	Done    bool
}

// RunOption customizes a single engine invocation.
type RunOption func(*runSettings)

type runSettings struct {
	label    string
	progress func(Progress)
}

// WithLabel names the invocation in progress updates and error messages.
func WithLabel(label string) RunOption {
	return func(s *runSettings) {
		s.label = label
	}
}

// WithProgress registers a callback for ffmpeg progress updates. The callback
// runs on the goroutine reading ffmpeg's stdout.
func WithProgress(fn func(Progress)) RunOption {
	return func(s *runSettings) {
		s.progress = fn
	}
}

func applyRunOptions(opts []RunOption) runSettings {
	var settings runSettings
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	return settings
}
