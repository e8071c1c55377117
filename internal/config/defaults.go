package config

const (
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultMagickBinary  = "magick"
	defaultImageEngine   = ImageEngineMagick

	defaultPreset        = "normal"
	defaultVideoCodec    = "av1"
	defaultAudioCodec    = "opus"
	defaultSubtitleCodec = "copy"
	defaultImageCodec    = "webp"
	defaultContainer     = "mkv"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

const (
	ImageEngineMagick = "magick"
	ImageEngineNative = "native"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Engines: Engines{
			FFmpeg:      defaultFFmpegBinary,
			FFprobe:     defaultFFprobeBinary,
			Magick:      defaultMagickBinary,
			ImageEngine: defaultImageEngine,
		},
		Encoding: Encoding{
			Preset:        defaultPreset,
			VideoCodec:    defaultVideoCodec,
			AudioCodec:    defaultAudioCodec,
			SubtitleCodec: defaultSubtitleCodec,
			ImageCodec:    defaultImageCodec,
			Container:     defaultContainer,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
