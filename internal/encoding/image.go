package encoding

import (
	"context"
	"runtime"

	"transcode/internal/fileutil"
	"transcode/internal/logging"
	"transcode/internal/services"
)

// ImageEncoder converts every image under a job's input path. It sizes its
// pool from GOMAXPROCS; Job.Workers is ignored.
type ImageEncoder struct {
	job    Job
	engine ImageEngine
	opts   driverOptions
}

// NewImageEncoder builds an image driver.
func NewImageEncoder(job Job, eng ImageEngine, opts ...Option) *ImageEncoder {
	return &ImageEncoder{
		job:    job,
		engine: eng,
		opts:   buildDriverOptions(KindImage, opts),
	}
}

// Encode converts every discovered image.
func (e *ImageEncoder) Encode(ctx context.Context) (Report, error) {
	if err := e.job.Validate(KindImage); err != nil {
		return Report{Kind: KindImage}, err
	}
	files, err := Discover(e.job.Input, KindImage)
	if err != nil {
		return Report{Kind: KindImage}, err
	}
	ctx, logger := newRunLogger(ctx, KindImage, e.opts)
	workers := runtime.GOMAXPROCS(0)
	logger.Info("image run started",
		logging.String("input", e.job.Input),
		logging.String("output", e.job.Output),
		logging.String("image_codec", string(e.job.ImageCodec)),
		logging.Int("workers", workers),
	)
	report := process(ctx, KindImage, files, workers, e.opts, e.convertFile)
	return report, report.finish(ctx)
}

func (e *ImageEncoder) convertFile(ctx context.Context, source string, claims *targetClaims) FileResult {
	logger := e.opts.fileLogger(ctx, source)
	tracker := newStateTracker(logger)
	result := FileResult{Source: source}

	ext, err := e.job.ImageCodec.Extension()
	if err != nil {
		return failed(tracker, result, err)
	}
	result.Target = ResolveTarget(source, e.job.Input, e.job.Output, ext)
	tracker.to(statePathResolved)
	if owner, ok := claims.claim(source, result.Target, func() bool {
		return ShouldSkip(source, result.Target, e.job.Force)
	}); !ok {
		return skipped(logger, tracker, result, owner)
	}
	quality, err := ImageQuality(e.job.Preset)
	if err != nil {
		return failed(tracker, result, err)
	}
	if err := fileutil.EnsureParentDir(result.Target); err != nil {
		return failed(tracker, result, services.Wrap(services.ErrPathNotFound, "image", "prepare target", result.Target, err))
	}

	tracker.to(stateMainPass)
	err = e.engine.Convert(ctx, source, result.Target, quality)
	result.Invocations++
	if err != nil {
		removeTarget(logger, result.Target)
		return failed(tracker, result, engineError(KindImage, "convert", source, err))
	}
	tracker.to(stateDone)
	result.Outcome = OutcomeEncoded
	return result
}
