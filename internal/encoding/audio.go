package encoding

import (
	"context"
	"path/filepath"
	"slices"

	"transcode/internal/engine"
	"transcode/internal/fileutil"
	"transcode/internal/logging"
	"transcode/internal/services"
)

// AudioEncoder transcodes every audio file under a job's input path.
type AudioEncoder struct {
	job    Job
	engine Engine
	prober Prober
	opts   driverOptions
}

// NewAudioEncoder builds an audio driver.
func NewAudioEncoder(job Job, eng Engine, prober Prober, opts ...Option) *AudioEncoder {
	return &AudioEncoder{
		job:    job,
		engine: eng,
		prober: prober,
		opts:   buildDriverOptions(KindAudio, opts),
	}
}

// Encode transcodes every discovered audio file.
func (e *AudioEncoder) Encode(ctx context.Context) (Report, error) {
	if err := e.job.Validate(KindAudio); err != nil {
		return Report{Kind: KindAudio}, err
	}
	files, err := Discover(e.job.Input, KindAudio)
	if err != nil {
		return Report{Kind: KindAudio}, err
	}
	ctx, logger := newRunLogger(ctx, KindAudio, e.opts)
	workers := resolveWorkers(e.job.Workers)
	logger.Info("audio run started",
		logging.String("input", e.job.Input),
		logging.String("output", e.job.Output),
		logging.String("audio_codec", string(e.job.AudioCodec)),
		logging.Int("workers", workers),
	)
	report := process(ctx, KindAudio, files, workers, e.opts, e.encodeFile)
	return report, report.finish(ctx)
}

func (e *AudioEncoder) encodeFile(ctx context.Context, source string, claims *targetClaims) FileResult {
	logger := e.opts.fileLogger(ctx, source)
	tracker := newStateTracker(logger)
	result := FileResult{Source: source}

	ext, err := e.job.AudioCodec.Extension(filepath.Ext(source))
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

	bitrate, err := AudioBitrate(e.job.Preset)
	if err != nil {
		return failed(tracker, result, err)
	}
	if e.job.AudioCodec != AudioCopy {
		channels, err := e.prober.ChannelCount(ctx, source)
		if err != nil {
			return failed(tracker, result, err)
		}
		bitrate = BoostBitrate(bitrate, channels)
	}
	duration, err := e.prober.Duration(ctx, source)
	if err != nil {
		return failed(tracker, result, err)
	}
	codecFlags, err := audioFlags(e.job.AudioCodec, bitrate)
	if err != nil {
		return failed(tracker, result, err)
	}
	flags := slices.Concat([]string{"-map", "0:a"}, codecFlags)

	if err := fileutil.EnsureParentDir(result.Target); err != nil {
		return failed(tracker, result, services.Wrap(services.ErrPathNotFound, "audio", "prepare target", result.Target, err))
	}
	tracker.to(stateMainPass)
	err = e.engine.Run(ctx, source, result.Target, flags,
		engine.WithLabel("encode"),
		engine.WithProgress(progressLogger(logger, duration)),
	)
	result.Invocations++
	if err != nil {
		removeTarget(logger, result.Target)
		return failed(tracker, result, engineError(KindAudio, "encode", source, err))
	}
	tracker.to(stateDone)
	result.Outcome = OutcomeEncoded
	return result
}
