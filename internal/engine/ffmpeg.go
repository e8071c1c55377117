package engine

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"transcode/internal/logging"
)

// FFmpeg runs ffmpeg with caller-supplied output flags.
type FFmpeg struct {
	binary string
	logger *slog.Logger
}

// Option configures an engine.
type Option func(*options)

type options struct {
	binary string
	logger *slog.Logger
}

// WithBinary overrides the executable.
func WithBinary(binary string) Option {
	return func(o *options) {
		if binary = strings.TrimSpace(binary); binary != "" {
			o.binary = binary
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(defaultBinary string, opts []Option) options {
	o := options{binary: defaultBinary, logger: logging.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewFFmpeg constructs an ffmpeg engine.
func NewFFmpeg(opts ...Option) *FFmpeg {
	o := buildOptions("ffmpeg", opts)
	return &FFmpeg{binary: o.binary, logger: logging.NewComponentLogger(o.logger, "ffmpeg")}
}

// Run encodes input to output. flags are placed between the input and the
// output, so they act as output options. The output is overwritten if present
// and removed when the run fails or is canceled.
func (f *FFmpeg) Run(ctx context.Context, input, output string, flags []string, opts ...RunOption) error {
	if err := requirePaths("ffmpeg", input, output); err != nil {
		return err
	}
	settings := applyRunOptions(opts)
	if settings.label == "" {
		settings.label = "encode"
	}

	args := f.buildArgs(input, output, flags, settings.progress != nil)
	c := command{
		engine:   "ffmpeg",
		binary:   f.binary,
		args:     args,
		output:   output,
		settings: settings,
	}
	if settings.progress != nil {
		c.stdout = func(r io.Reader) {
			scanProgress(r, settings.label, settings.progress)
		}
	}
	return run(ctx, f.logger, c)
}

func (f *FFmpeg) buildArgs(input, output string, flags []string, progress bool) []string {
	args := make([]string, 0, len(flags)+12)
	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")
	if progress {
		args = append(args, "-nostats", "-progress", "pipe:1")
	}
	args = append(args, "-i", input)
	args = append(args, flags...)
	args = append(args, output)
	return args
}
