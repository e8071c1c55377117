// Command transcode batch-converts video, audio, and image files with
// ffmpeg and ImageMagick, mirroring the input tree into a destination.
package main
