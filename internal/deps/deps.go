package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"transcode/internal/config"
)

const versionTimeout = 5 * time.Second

// Engine is an external program a run shells out to.
type Engine struct {
	Name     string
	Binary   string
	Purpose  string
	Optional bool
}

// Status is the result of checking one engine. Path is empty when the binary
// could not be resolved.
type Status struct {
	Engine
	Path    string
	Version string
	Problem string
}

// Available reports whether the engine binary was found.
func (s Status) Available() bool {
	return s.Path != ""
}

// Engines lists the programs runs need under cfg. ImageMagick is optional
// when the native image engine is selected.
func Engines(cfg *config.Config) []Engine {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return []Engine{
		{Name: "FFmpeg", Binary: cfg.Engines.FFmpeg, Purpose: "video and audio encoding, crop detection"},
		{Name: "FFprobe", Binary: cfg.Engines.FFprobe, Purpose: "duration and channel probing"},
		{
			Name:     "ImageMagick",
			Binary:   cfg.Engines.Magick,
			Purpose:  "image conversion",
			Optional: cfg.Engines.ImageEngine == config.ImageEngineNative,
		},
	}
}

// Check resolves every engine and reads its version banner. A binary that is
// found but prints no banner is still available.
func Check(ctx context.Context, engines []Engine) []Status {
	statuses := make([]Status, 0, len(engines))
	for _, eng := range engines {
		eng.Binary = strings.TrimSpace(eng.Binary)
		status := Status{Engine: eng}
		switch path, err := exec.LookPath(eng.Binary); {
		case eng.Binary == "":
			status.Problem = "binary not configured"
		case err != nil:
			status.Problem = fmt.Sprintf("%q not found", eng.Binary)
		default:
			status.Path = path
			status.Version = version(ctx, path)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Missing returns the required engines that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available() && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

// version returns the first banner line of `binary -version`, without the
// copyright and URL tails ffmpeg and ImageMagick append.
func version(ctx context.Context, binary string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	for _, tail := range []string{" Copyright", " https://"} {
		line, _, _ = strings.Cut(line, tail)
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "Version: "))
}
