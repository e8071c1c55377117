// Package config loads, normalizes, and validates transcode configuration.
//
// Configuration is read from TOML (by default ~/.config/transcode/config.toml,
// falling back to ./transcode.toml), merged with defaults, expanded for user
// paths, and checked for missing or invalid values. Engine binaries can be
// overridden through TRANSCODE_FFMPEG, TRANSCODE_FFPROBE, and TRANSCODE_MAGICK.
// Command-line flags take precedence over everything loaded here.
package config
