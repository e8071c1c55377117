// Package engine runs the external transcoding programs.
//
// FFmpeg drives audio/video encodes and remuxes, Magick drives still-image
// conversion through ImageMagick, and Native converts JPEG/PNG in process with
// the imaging library. Every engine removes its output file when a run fails
// or is canceled, and subprocess engines kill the whole process group on
// cancellation so encoder helper processes never outlive the run.
package engine
