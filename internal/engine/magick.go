package engine

import (
	"context"
	"log/slog"
	"strconv"

	"transcode/internal/logging"
)

// Magick converts still images with ImageMagick.
type Magick struct {
	binary string
	logger *slog.Logger
}

// NewMagick constructs an ImageMagick engine.
func NewMagick(opts ...Option) *Magick {
	o := buildOptions("magick", opts)
	return &Magick{binary: o.binary, logger: logging.NewComponentLogger(o.logger, "magick")}
}

// Convert re-encodes input into output; the output format follows the output
// extension. quality is on ImageMagick's 0-100 scale.
func (m *Magick) Convert(ctx context.Context, input, output string, quality int) error {
	if err := requirePaths("magick", input, output); err != nil {
		return err
	}
	args := []string{input, "-auto-orient", "-quality", strconv.Itoa(clampQuality(quality)), output}
	return run(ctx, m.logger, command{
		engine:   "magick",
		binary:   m.binary,
		args:     args,
		output:   output,
		settings: runSettings{label: "convert"},
	})
}

func clampQuality(q int) int {
	return min(max(q, 1), 100)
}
