// Package ffprobe provides a typed wrapper around ffprobe JSON output and the
// Prober used by the encoders.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Prober: answers duration, channel-count, and crop questions for a file
//
// Inspect executes ffprobe and returns a parsed Result. CropSuggestion runs
// ffmpeg's cropdetect filter and reduces its per-frame output to a single
// crop rectangle, or nothing when the frame has no stable black borders.
package ffprobe
