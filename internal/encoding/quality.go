package encoding

import (
	"fmt"

	"transcode/internal/services"
)

// ErrInvalidPreset is returned for preset values outside PresetQuality and
// PresetNormal. It matches services.ErrInvalidConfiguration.
var ErrInvalidPreset = fmt.Errorf("%w: invalid preset", services.ErrInvalidConfiguration)

// QualityProfile holds the numeric encoder parameters derived from a preset.
type QualityProfile struct {
	// SpeedLevel is on the 0-13 scale; lower is slower and smaller.
	SpeedLevel int
	// QualityFactor is the CRF value. AV1/VP9 use 0-63, AVC/HEVC use 0-51.
	QualityFactor int
	// AudioBitrate is the base audio bitrate in bits per second, before the
	// channel boost.
	AudioBitrate int
}

// ResolveQuality maps a preset and video codec to encoder parameters.
func ResolveQuality(preset Preset, codec VideoCodec) (QualityProfile, error) {
	speed, err := speedLevel(preset)
	if err != nil {
		return QualityProfile{}, err
	}
	bitrate, err := AudioBitrate(preset)
	if err != nil {
		return QualityProfile{}, err
	}

	var factor int
	switch codec {
	case VideoAV1, VideoVP9:
		factor = pick(preset, 27, 33)
	case VideoAVC, VideoHEVC:
		factor = pick(preset, 22, 28)
	default:
		return QualityProfile{}, invalid("video codec", string(codec))
	}
	return QualityProfile{SpeedLevel: speed, QualityFactor: factor, AudioBitrate: bitrate}, nil
}

// AudioBitrate returns the base audio bitrate for a preset.
func AudioBitrate(preset Preset) (int, error) {
	if err := checkPreset(preset); err != nil {
		return 0, err
	}
	return pick(preset, 128000, 96000), nil
}

// ImageQuality returns the 0-100 image quality for a preset.
func ImageQuality(preset Preset) (int, error) {
	if err := checkPreset(preset); err != nil {
		return 0, err
	}
	return pick(preset, 95, 85), nil
}

func speedLevel(preset Preset) (int, error) {
	if err := checkPreset(preset); err != nil {
		return 0, err
	}
	return pick(preset, 6, 10), nil
}

func checkPreset(preset Preset) error {
	switch preset {
	case PresetQuality, PresetNormal:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPreset, string(preset))
}

func pick(preset Preset, quality, normal int) int {
	if preset == PresetQuality {
		return quality
	}
	return normal
}

// BoostBitrate scales an audio bitrate for surround input: 7 or more
// channels get 2.5x, 5 or 6 channels get 2x.
func BoostBitrate(base, channels int) int {
	switch {
	case channels >= 7:
		return base * 5 / 2
	case channels >= 5:
		return base * 2
	default:
		return base
	}
}
