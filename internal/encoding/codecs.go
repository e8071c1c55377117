package encoding

import (
	"fmt"
	"strings"

	"transcode/internal/services"
)

// Kind is the media kind a run targets.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

// Preset selects one of the two quality profiles.
type Preset string

const (
	PresetQuality Preset = "quality"
	PresetNormal  Preset = "normal"
)

type VideoCodec string

const (
	VideoAV1  VideoCodec = "av1"
	VideoVP9  VideoCodec = "vp9"
	VideoAVC  VideoCodec = "avc"
	VideoHEVC VideoCodec = "hevc"
)

type AudioCodec string

const (
	AudioCopy AudioCodec = "copy"
	AudioMP3  AudioCodec = "mp3"
	AudioAAC  AudioCodec = "aac"
	AudioOpus AudioCodec = "opus"
)

type SubtitleCodec string

const (
	SubtitleCopy    SubtitleCodec = "copy"
	SubtitleSRT     SubtitleCodec = "srt"
	SubtitleASS     SubtitleCodec = "ass"
	SubtitleMovText SubtitleCodec = "mov_text"
	SubtitleWebVTT  SubtitleCodec = "webvtt"
)

type ImageCodec string

const (
	ImageJPEG ImageCodec = "jpeg"
	ImagePNG  ImageCodec = "png"
	ImageWebP ImageCodec = "webp"
)

type Container string

const (
	ContainerMP4  Container = "mp4"
	ContainerMKV  Container = "mkv"
	ContainerWebM Container = "webm"
)

func AllKinds() []Kind             { return []Kind{KindVideo, KindAudio, KindImage} }
func AllPresets() []Preset         { return []Preset{PresetQuality, PresetNormal} }
func AllVideoCodecs() []VideoCodec { return []VideoCodec{VideoAV1, VideoVP9, VideoAVC, VideoHEVC} }
func AllAudioCodecs() []AudioCodec { return []AudioCodec{AudioCopy, AudioMP3, AudioAAC, AudioOpus} }
func AllImageCodecs() []ImageCodec { return []ImageCodec{ImageJPEG, ImagePNG, ImageWebP} }
func AllContainers() []Container   { return []Container{ContainerMP4, ContainerMKV, ContainerWebM} }
func AllSubtitleCodecs() []SubtitleCodec {
	return []SubtitleCodec{SubtitleCopy, SubtitleSRT, SubtitleASS, SubtitleMovText, SubtitleWebVTT}
}

func invalid(field, value string) error {
	return services.Wrap(services.ErrInvalidConfiguration, "job", field, fmt.Sprintf("unsupported value %q", value), nil)
}

func normalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ParsePreset accepts a preset name case-insensitively.
func ParsePreset(value string) (Preset, error) {
	p := Preset(normalizeName(value))
	switch p {
	case PresetQuality, PresetNormal:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreset, value)
}

func ParseVideoCodec(value string) (VideoCodec, error) {
	c := VideoCodec(normalizeName(value))
	if _, err := c.Encoder(); err != nil {
		return "", err
	}
	return c, nil
}

func ParseAudioCodec(value string) (AudioCodec, error) {
	c := AudioCodec(normalizeName(value))
	if _, err := c.Encoder(); err != nil {
		return "", err
	}
	return c, nil
}

func ParseSubtitleCodec(value string) (SubtitleCodec, error) {
	c := SubtitleCodec(normalizeName(value))
	if _, err := c.Encoder(); err != nil {
		return "", err
	}
	return c, nil
}

func ParseImageCodec(value string) (ImageCodec, error) {
	c := ImageCodec(normalizeName(value))
	if _, err := c.Extension(); err != nil {
		return "", err
	}
	return c, nil
}

func ParseContainer(value string) (Container, error) {
	c := Container(normalizeName(value))
	if _, err := c.Extension(); err != nil {
		return "", err
	}
	return c, nil
}

func ParseKind(value string) (Kind, error) {
	k := Kind(normalizeName(value))
	if _, err := k.Extensions(); err != nil {
		return "", err
	}
	return k, nil
}

// Encoder returns the ffmpeg video encoder name.
func (c VideoCodec) Encoder() (string, error) {
	switch c {
	case VideoAV1:
		return "libsvtav1", nil
	case VideoVP9:
		return "libvpx-vp9", nil
	case VideoAVC:
		return "libx264", nil
	case VideoHEVC:
		return "libx265", nil
	}
	return "", invalid("video codec", string(c))
}

// TwoPass reports whether the codec is encoded with two passes.
func (c VideoCodec) TwoPass() bool {
	return c == VideoVP9
}

// Encoder returns the ffmpeg audio encoder name, "copy" for passthrough.
func (c AudioCodec) Encoder() (string, error) {
	switch c {
	case AudioCopy:
		return "copy", nil
	case AudioMP3:
		return "libmp3lame", nil
	case AudioAAC:
		return "aac", nil
	case AudioOpus:
		return "libopus", nil
	}
	return "", invalid("audio codec", string(c))
}

// Extension returns the output extension for a standalone audio file.
// Passthrough keeps the source extension.
func (c AudioCodec) Extension(sourceExt string) (string, error) {
	switch c {
	case AudioCopy:
		return sourceExt, nil
	case AudioMP3:
		return ".mp3", nil
	case AudioAAC:
		return ".aac", nil
	case AudioOpus:
		return ".opus", nil
	}
	return "", invalid("audio codec", string(c))
}

// Encoder returns the ffmpeg subtitle encoder name, "copy" for passthrough.
func (c SubtitleCodec) Encoder() (string, error) {
	switch c {
	case SubtitleCopy, SubtitleSRT, SubtitleASS, SubtitleMovText, SubtitleWebVTT:
		return string(c), nil
	}
	return "", invalid("subtitle codec", string(c))
}

func (c ImageCodec) Extension() (string, error) {
	switch c {
	case ImageJPEG:
		return ".jpg", nil
	case ImagePNG:
		return ".png", nil
	case ImageWebP:
		return ".webp", nil
	}
	return "", invalid("image codec", string(c))
}

func (c Container) Extension() (string, error) {
	switch c {
	case ContainerMP4:
		return ".mp4", nil
	case ContainerMKV:
		return ".mkv", nil
	case ContainerWebM:
		return ".webm", nil
	}
	return "", invalid("container", string(c))
}

// Extensions returns the lower-cased extensions discovered for a kind when
// walking a directory. .m4a is classified as audio only.
func (k Kind) Extensions() ([]string, error) {
	switch k {
	case KindVideo:
		return []string{".mkv", ".webm", ".mp4", ".m4v", ".avi", ".mov", ".qt", ".ogv"}, nil
	case KindAudio:
		return []string{".mp3", ".wav", ".flac", ".ogg", ".opus", ".m4a"}, nil
	case KindImage:
		return []string{".jpg", ".jpeg", ".jfif", ".png", ".heif", ".heic", ".webp", ".avif"}, nil
	}
	return nil, invalid("kind", string(k))
}
