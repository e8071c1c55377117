package ffprobe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strings"
	"sync"

	"transcode/internal/logging"
	"transcode/internal/services"
)

// Prober answers the per-file questions the encoders ask before building
// engine arguments. Inspection results are cached per path for the lifetime
// of the Prober, so one run probes each file at most once.
type Prober struct {
	ffprobe string
	ffmpeg  string
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]Result
}

// Option customizes a Prober.
type Option func(*Prober)

// WithFFprobe overrides the ffprobe binary.
func WithFFprobe(binary string) Option {
	return func(p *Prober) {
		if binary = strings.TrimSpace(binary); binary != "" {
			p.ffprobe = binary
		}
	}
}

// WithFFmpeg overrides the ffmpeg binary used for crop detection.
func WithFFmpeg(binary string) Option {
	return func(p *Prober) {
		if binary = strings.TrimSpace(binary); binary != "" {
			p.ffmpeg = binary
		}
	}
}

// WithLogger attaches a logger for crop detection diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProber constructs a Prober backed by ffprobe and ffmpeg.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		ffprobe: "ffprobe",
		ffmpeg:  "ffmpeg",
		logger:  logging.NewNop(),
		cache:   make(map[string]Result),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "probe")
	return p
}

func (p *Prober) inspect(ctx context.Context, path string) (Result, error) {
	p.mu.Lock()
	cached, ok := p.cache[path]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	result, err := Inspect(ctx, p.ffprobe, path)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, services.Wrap(services.ErrProbeFailure, "probe", "inspect", path, err)
	}

	p.mu.Lock()
	p.cache[path] = result
	p.mu.Unlock()
	return result, nil
}

// Duration returns the media duration in whole seconds.
func (p *Prober) Duration(ctx context.Context, path string) (int, error) {
	result, err := p.inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	seconds := result.DurationSeconds()
	if math.IsNaN(seconds) || seconds < 0 {
		return 0, services.Wrap(services.ErrProbeFailure, "probe", "duration", fmt.Sprintf("malformed duration %q for %s", result.Format.Duration, path), nil)
	}
	return int(math.Round(seconds)), nil
}

// ChannelCount returns the channel count of the first audio stream, or 0 when
// the file has no audio.
func (p *Prober) ChannelCount(ctx context.Context, path string) (int, error) {
	result, err := p.inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	channels := result.AudioChannels()
	if channels < 0 {
		return 0, services.Wrap(services.ErrProbeFailure, "probe", "channels", fmt.Sprintf("negative channel count for %s", path), nil)
	}
	return channels, nil
}

// CropSuggestion samples the file with ffmpeg cropdetect and returns a
// "w:h:x:y" rectangle, or "" when no crop should be applied.
func (p *Prober) CropSuggestion(ctx context.Context, path string) (string, error) {
	result, err := p.inspect(ctx, path)
	if err != nil {
		return "", err
	}
	stream, ok := result.VideoStream()
	if !ok {
		return "", nil
	}

	offset := 0.0
	if d := result.DurationSeconds(); !math.IsNaN(d) && d > 2*cropSampleSeconds {
		// Skip opening titles, which are often letterboxed differently.
		offset = math.Min(d*0.1, 300)
	}

	cmd := commandContext(ctx, p.ffmpeg, cropArgs(path, offset, result.IsHDR())...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", services.Wrap(services.ErrProbeFailure, "probe", "cropdetect", path, fmt.Errorf("%w: %s", err, lastLine(output)))
		}
		return "", services.Wrap(services.ErrProbeFailure, "probe", "cropdetect", path, err)
	}

	candidates := parseCropCandidates(output)
	crop := chooseCrop(candidates, stream.Width, stream.Height)
	attrs := []logging.Attr{
		logging.String(logging.FieldSource, path),
		logging.Int("candidates", len(candidates)),
		logging.Bool("hdr", result.IsHDR()),
	}
	if len(candidates) > 0 {
		attrs = append(attrs,
			logging.String("top_candidate", candidates[0].Crop),
			logging.Float64("top_percent", candidates[0].Percent),
		)
	}
	attrs = append(attrs, logging.String("crop", crop))
	p.logger.Debug("crop detection finished", logging.Args(attrs...)...)
	return crop, nil
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
