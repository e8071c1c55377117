package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"transcode/internal/engine"
	"transcode/internal/fileutil"
	"transcode/internal/logging"
	"transcode/internal/metadata"
	"transcode/internal/services"
)

// VideoEncoder transcodes every video under a job's input path.
type VideoEncoder struct {
	job    Job
	engine Engine
	prober Prober
	opts   driverOptions

	webmNotice     sync.Once
	subtitleNotice sync.Once
}

// NewVideoEncoder builds a video driver. The job is validated when a run
// starts.
func NewVideoEncoder(job Job, eng Engine, prober Prober, opts ...Option) *VideoEncoder {
	return &VideoEncoder{
		job:    job,
		engine: eng,
		prober: prober,
		opts:   buildDriverOptions(KindVideo, opts),
	}
}

func newPassLogID() string {
	return uuid.NewString()
}

// Encode transcodes every discovered video. Per-file failures are collected
// in the report and joined into the returned error.
func (e *VideoEncoder) Encode(ctx context.Context) (Report, error) {
	return e.runEach(ctx, e.encodeFile)
}

// StripAudio copies every discovered video without its audio streams.
func (e *VideoEncoder) StripAudio(ctx context.Context) (Report, error) {
	return e.runEach(ctx, e.remuxFunc("strip audio", streamCopyFlags(true)))
}

var timestampPattern = regexp.MustCompile(`^(\d+(\.\d+)?|(\d{1,2}:)?\d{1,2}:\d{2}(\.\d+)?)$`)

// Trim stream-copies the span between start and end of every discovered
// video. Either bound may be empty; timestamps are seconds or [HH:]MM:SS.
func (e *VideoEncoder) Trim(ctx context.Context, start, end string) (Report, error) {
	if start == "" && end == "" {
		return Report{Kind: KindVideo}, services.Wrap(services.ErrInvalidConfiguration, "trim", "bounds", "start or end required", nil)
	}
	var flags []string
	for _, bound := range []struct{ flag, value string }{{"-ss", start}, {"-to", end}} {
		if bound.value == "" {
			continue
		}
		if !timestampPattern.MatchString(bound.value) {
			return Report{Kind: KindVideo}, services.Wrap(services.ErrInvalidConfiguration, "trim", "bounds",
				fmt.Sprintf("invalid timestamp %q", bound.value), nil)
		}
		flags = append(flags, bound.flag, bound.value)
	}
	flags = append(flags, streamCopyFlags(false)...)
	return e.runEach(ctx, e.remuxFunc("trim", flags))
}

func (e *VideoEncoder) runEach(ctx context.Context, fn fileFunc) (Report, error) {
	if err := e.job.Validate(KindVideo); err != nil {
		return Report{Kind: KindVideo}, err
	}
	files, err := Discover(e.job.Input, KindVideo)
	if err != nil {
		return Report{Kind: KindVideo}, err
	}
	ctx, logger := newRunLogger(ctx, KindVideo, e.opts)
	workers := resolveWorkers(e.job.Workers)
	logger.Info("video run started",
		logging.String("input", e.job.Input),
		logging.String("output", e.job.Output),
		logging.String("preset", string(e.job.Preset)),
		logging.Int("workers", workers),
	)
	report := process(ctx, KindVideo, files, workers, e.opts, fn)
	return report, report.finish(ctx)
}

func (e *VideoEncoder) encodeFile(ctx context.Context, source string, claims *targetClaims) FileResult {
	logger := e.opts.fileLogger(ctx, source)
	tracker := newStateTracker(logger)
	result := FileResult{Source: source}

	video, audio, overridden := effectiveCodecs(e.job.Container, e.job.VideoCodec, e.job.AudioCodec)
	if overridden {
		e.webmNotice.Do(func() {
			logging.WarnWithContext(e.opts.logger, "webm container overrides requested codecs", "codec_override",
				logging.String("requested_video", string(e.job.VideoCodec)),
				logging.String("requested_audio", string(e.job.AudioCodec)),
				logging.String("video_codec", string(video)),
				logging.String("audio_codec", string(audio)),
			)
		})
	}

	if requested := e.job.SubtitleCodec; e.job.Container == ContainerWebM && requested != SubtitleCopy && requested != SubtitleWebVTT {
		e.subtitleNotice.Do(func() {
			logging.WarnWithContext(e.opts.logger, "webm container overrides requested subtitle codec", "codec_override",
				logging.String("requested_subtitle", string(requested)),
				logging.String("subtitle_codec", string(SubtitleWebVTT)),
			)
		})
	}

	ext, err := e.job.Container.Extension()
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

	plan, duration, err := e.plan(ctx, logger, source, result.Target, video, audio)
	if err != nil {
		return failed(tracker, result, err)
	}
	invocations, err := plan.invocations()
	if err != nil {
		return failed(tracker, result, err)
	}
	if err := fileutil.EnsureParentDir(result.Target); err != nil {
		return failed(tracker, result, services.Wrap(services.ErrPathNotFound, "video", "prepare target", result.Target, err))
	}
	if video.TwoPass() {
		defer removePassLogs(logger, plan.passLogPrefix())
	}

	for i, inv := range invocations {
		if len(invocations) > 1 && i == 0 {
			tracker.to(stateFirstPass)
		} else {
			tracker.to(stateMainPass)
		}
		logger.Debug("engine invocation", logging.String("pass", inv.Label), logging.Any("flags", inv.Flags))
		err := e.engine.Run(ctx, inv.Input, inv.Output, inv.Flags,
			engine.WithLabel(inv.Label),
			engine.WithProgress(progressLogger(logger, duration)),
		)
		result.Invocations++
		if err != nil {
			removeTarget(logger, result.Target)
			return failed(tracker, result, engineError(KindVideo, inv.Label, source, err))
		}
	}
	tracker.to(stateDone)
	result.Outcome = OutcomeEncoded
	return result
}

// plan gathers the probe answers and per-file overrides for one source.
func (e *VideoEncoder) plan(ctx context.Context, logger *slog.Logger, source, target string, video VideoCodec, audio AudioCodec) (videoPlan, int, error) {
	quality, err := ResolveQuality(e.job.Preset, video)
	if err != nil {
		return videoPlan{}, 0, err
	}
	bitrate := quality.AudioBitrate
	if audio != AudioCopy {
		channels, err := e.prober.ChannelCount(ctx, source)
		if err != nil {
			return videoPlan{}, 0, err
		}
		bitrate = BoostBitrate(bitrate, channels)
	}
	var crop string
	if e.job.Crop {
		crop, err = e.prober.CropSuggestion(ctx, source)
		if err != nil {
			return videoPlan{}, 0, err
		}
		if crop != "" {
			logger.Info("crop detected", logging.String("crop", crop))
		}
	}
	duration, err := e.prober.Duration(ctx, source)
	if err != nil {
		return videoPlan{}, 0, err
	}

	var tags []string
	rec, ok, err := metadata.Load(source)
	switch {
	case err != nil:
		logging.WarnWithContext(logger, "metadata sidecar ignored", "metadata_invalid", logging.Error(err))
	case ok:
		tags = rec.Flags()
	}

	return videoPlan{
		source:     source,
		target:     target,
		video:      video,
		audio:      audio,
		subtitle:   effectiveSubtitle(source, e.job.Container, e.job.SubtitleCodec),
		quality:    quality,
		bitrate:    bitrate,
		crop:       crop,
		metadata:   tags,
		passLogDir: e.job.TempDir,
		passLogID:  e.opts.newID(),
	}, duration, nil
}

// remuxFunc returns a per-file step that stream-copies source with flags,
// keeping its container unless the output path names one.
func (e *VideoEncoder) remuxFunc(label string, flags []string) fileFunc {
	return func(ctx context.Context, source string, claims *targetClaims) FileResult {
		logger := e.opts.fileLogger(ctx, source)
		tracker := newStateTracker(logger)
		result := FileResult{Source: source}

		ext := filepath.Ext(e.job.Output)
		if ext == "" {
			ext = filepath.Ext(source)
		}
		result.Target = ResolveTarget(source, e.job.Input, e.job.Output, ext)
		tracker.to(statePathResolved)
		if owner, ok := claims.claim(source, result.Target, func() bool {
			return fileutil.Exists(result.Target)
		}); !ok {
			return skipped(logger, tracker, result, owner)
		}
		if err := fileutil.EnsureParentDir(result.Target); err != nil {
			return failed(tracker, result, services.Wrap(services.ErrPathNotFound, "video", "prepare target", result.Target, err))
		}

		tracker.to(stateMainPass)
		err := e.engine.Run(ctx, source, result.Target, flags, engine.WithLabel(label))
		result.Invocations++
		if err != nil {
			removeTarget(logger, result.Target)
			return failed(tracker, result, engineError(KindVideo, label, source, err))
		}
		tracker.to(stateDone)
		result.Outcome = OutcomeEncoded
		return result
	}
}

func failed(tracker *stateTracker, result FileResult, err error) FileResult {
	tracker.to(stateFailed)
	result.Outcome = OutcomeFailed
	result.Err = err
	return result
}

func removeTarget(logger *slog.Logger, target string) {
	removed, err := fileutil.RemoveIfExists(target)
	switch {
	case err != nil:
		logging.WarnWithContext(logger, "partial output not removed", "cleanup_failed",
			logging.String(logging.FieldTarget, target), logging.Error(err))
	case removed:
		logger.Debug("partial output removed", logging.String(logging.FieldTarget, target))
	}
}

func removePassLogs(logger *slog.Logger, prefix string) {
	n, err := fileutil.RemoveGlob(prefix + "*")
	if err != nil {
		logging.WarnWithContext(logger, "two-pass logs not removed", "cleanup_failed",
			logging.String("prefix", prefix), logging.Error(err))
		return
	}
	logger.Debug("two-pass logs removed", logging.Int("files", n))
}
