package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeEngines()
	if err := c.normalizeEncoding(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeMetrics()
}

func (c *Config) normalizeEngines() {
	c.Engines.FFmpeg = binaryWithEnv(c.Engines.FFmpeg, "TRANSCODE_FFMPEG", defaultFFmpegBinary)
	c.Engines.FFprobe = binaryWithEnv(c.Engines.FFprobe, "TRANSCODE_FFPROBE", defaultFFprobeBinary)
	c.Engines.Magick = binaryWithEnv(c.Engines.Magick, "TRANSCODE_MAGICK", defaultMagickBinary)
	c.Engines.ImageEngine = strings.ToLower(strings.TrimSpace(c.Engines.ImageEngine))
	if c.Engines.ImageEngine == "" {
		c.Engines.ImageEngine = defaultImageEngine
	}
}

// binaryWithEnv prefers a non-empty environment override over the file value.
func binaryWithEnv(value, env, fallback string) string {
	if override, ok := os.LookupEnv(env); ok && strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func (c *Config) normalizeEncoding() error {
	enc := &c.Encoding
	enc.Preset = lowerOr(enc.Preset, defaultPreset)
	enc.VideoCodec = lowerOr(enc.VideoCodec, defaultVideoCodec)
	enc.AudioCodec = lowerOr(enc.AudioCodec, defaultAudioCodec)
	enc.SubtitleCodec = lowerOr(enc.SubtitleCodec, defaultSubtitleCodec)
	enc.ImageCodec = lowerOr(enc.ImageCodec, defaultImageCodec)
	enc.Container = lowerOr(enc.Container, defaultContainer)

	tempDir := strings.TrimSpace(enc.TempDir)
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	var err error
	if enc.TempDir, err = expandPath(tempDir); err != nil {
		return fmt.Errorf("encoding.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = lowerOr(c.Logging.Format, defaultLogFormat)
	c.Logging.Level = lowerOr(c.Logging.Level, defaultLogLevel)
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
