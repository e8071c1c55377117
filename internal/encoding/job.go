package encoding

import (
	"strings"

	"transcode/internal/services"
)

// Job is one transcoding request, built once per invocation. Drivers never
// modify it; per-file overrides are computed values.
type Job struct {
	Input         string
	Output        string
	Preset        Preset
	Force         bool
	VideoCodec    VideoCodec
	AudioCodec    AudioCodec
	SubtitleCodec SubtitleCodec
	ImageCodec    ImageCodec
	Container     Container
	// Crop enables per-file crop detection for video.
	Crop bool
	// Workers bounds concurrent files for video and audio; zero means one
	// per logical CPU.
	Workers int
	// TempDir holds two-pass statistics files.
	TempDir string
}

// Validate checks the fields kind relies on, before any engine runs.
func (j Job) Validate(kind Kind) error {
	if strings.TrimSpace(j.Input) == "" {
		return services.Wrap(services.ErrInvalidConfiguration, "job", "input", "input path required", nil)
	}
	if strings.TrimSpace(j.Output) == "" {
		return services.Wrap(services.ErrInvalidConfiguration, "job", "output", "destination path required", nil)
	}
	if j.Workers < 0 {
		return services.Wrap(services.ErrInvalidConfiguration, "job", "workers", "must not be negative", nil)
	}
	if err := checkPreset(j.Preset); err != nil {
		return err
	}
	switch kind {
	case KindVideo:
		if _, err := j.VideoCodec.Encoder(); err != nil {
			return err
		}
		if _, err := j.AudioCodec.Encoder(); err != nil {
			return err
		}
		if _, err := j.SubtitleCodec.Encoder(); err != nil {
			return err
		}
		if _, err := j.Container.Extension(); err != nil {
			return err
		}
	case KindAudio:
		if _, err := j.AudioCodec.Encoder(); err != nil {
			return err
		}
	case KindImage:
		if _, err := j.ImageCodec.Extension(); err != nil {
			return err
		}
	default:
		return invalid("kind", string(kind))
	}
	return nil
}
