// Package services defines shared utilities consumed by the encoder drivers
// and the external engine wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, media kinds, and source paths for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the categories the CLI reports (bad input, engine, probe,
//     cancellation).
//
// Use these helpers when wiring new driver logic so operational behaviour
// (error classification, observability) stays uniform across media kinds.
package services
