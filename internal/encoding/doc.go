// Package encoding turns a transcoding Job into engine invocations.
//
// It owns the policy layer of the tool:
//   - discovery of candidate files per media kind
//   - target path derivation that mirrors the input tree
//   - preset to quality mapping and the audio channel boost
//   - per-file argument building (container overrides, subtitle fixes,
//     VP9 two-pass sequencing, crop filters, metadata)
//   - the video, audio, and image drivers that run files through a bounded
//     worker pool and collect per-file outcomes into a Report
//
// Engines and probing are consumed through the Engine, ImageEngine, and
// Prober interfaces so drivers can be exercised without ffmpeg installed.
package encoding
