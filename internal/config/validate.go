package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable. Codec and preset names are
// checked again when a job is built, since flags can replace them.
func (c *Config) Validate() error {
	if err := c.validateEngines(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEngines() error {
	if c.Engines.FFmpeg == "" || c.Engines.FFprobe == "" {
		return errors.New("engines.ffmpeg and engines.ffprobe must be set")
	}
	switch c.Engines.ImageEngine {
	case ImageEngineMagick:
		if c.Engines.Magick == "" {
			return errors.New("engines.magick must be set when image_engine is magick")
		}
	case ImageEngineNative:
	default:
		return fmt.Errorf("engines.image_engine must be %q or %q, got %q", ImageEngineMagick, ImageEngineNative, c.Engines.ImageEngine)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.Workers < 0 {
		return errors.New("encoding.workers must be zero (auto) or positive")
	}
	if !slices.Contains([]string{"quality", "normal"}, c.Encoding.Preset) {
		return fmt.Errorf("encoding.preset must be quality or normal, got %q", c.Encoding.Preset)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
