package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"transcode/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a validated config whose temp directory is unique to
// the test. Logging is quiet unless an option changes it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Encoding.TempDir = filepath.Join(base, "tmp")
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("test config directories: %v", err)
	}
	return builder.cfg
}

// WithImageEngine selects the image engine.
func WithImageEngine(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Engines.ImageEngine = name
	}
}

// WithMetricsTextfile enables the metrics textfile under the test directory.
func WithMetricsTextfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, "metrics", name)
	}
}

// WithStubbedBinaries writes stub executables that exit 0 and points the
// engine settings at them.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		stub := func(name string) string {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			return target
		}
		b.cfg.Engines.FFmpeg = stub("ffmpeg")
		b.cfg.Engines.FFprobe = stub("ffprobe")
		b.cfg.Engines.Magick = stub("magick")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Encoding.TempDir)
}
