package engine

import (
	"context"
	"image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"transcode/internal/logging"
	"transcode/internal/services"
)

// Native converts images in process. It decodes JPEG, PNG, GIF, BMP, TIFF,
// and WebP, and encodes JPEG and PNG.
type Native struct {
	logger *slog.Logger
}

// NewNative constructs the in-process image engine.
func NewNative(opts ...Option) *Native {
	o := buildOptions("", opts)
	return &Native{logger: logging.NewComponentLogger(o.logger, "native-image")}
}

// Convert decodes input, applies EXIF orientation, and saves output in the
// format implied by its extension.
func (n *Native) Convert(ctx context.Context, input, output string, quality int) error {
	if err := requirePaths("native-image", input, output); err != nil {
		return err
	}
	encodeOpt, err := nativeEncodeOption(output, quality)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := imaging.Open(input, imaging.AutoOrientation(true))
	if err != nil {
		return services.Wrap(services.ErrEngineFailure, "native-image", "decode", filepath.Base(input), err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := imaging.Save(img, output, encodeOpt); err != nil {
		cleanupOutput(n.logger, output)
		return services.Wrap(services.ErrEngineFailure, "native-image", "encode", filepath.Base(output), err)
	}
	if err := ctx.Err(); err != nil {
		cleanupOutput(n.logger, output)
		return err
	}
	return nil
}

func nativeEncodeOption(output string, quality int) (imaging.EncodeOption, error) {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".jpg", ".jpeg":
		return imaging.JPEGQuality(clampQuality(quality)), nil
	case ".png":
		level := png.DefaultCompression
		if quality >= 90 {
			level = png.BestCompression
		}
		return imaging.PNGCompressionLevel(level), nil
	default:
		return nil, services.Wrap(services.ErrInvalidConfiguration, "native-image", "encode",
			"unsupported output format "+filepath.Ext(output)+"; use the magick image engine", nil)
	}
}
