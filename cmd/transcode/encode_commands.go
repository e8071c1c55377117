package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"transcode/internal/config"
	"transcode/internal/encoding"
	"transcode/internal/engine"
	"transcode/internal/logging"
	"transcode/internal/media/ffprobe"
	"transcode/internal/metrics"
	"transcode/internal/runlock"
	"transcode/internal/services"
)

// jobFlags holds per-run overrides. Empty strings and unset booleans fall
// back to the configuration file.
type jobFlags struct {
	preset        string
	videoCodec    string
	audioCodec    string
	subtitleCodec string
	imageCodec    string
	container     string
	force         bool
	crop          bool
	jobs          int
}

func (f *jobFlags) addPreset(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "Quality preset (quality, normal)")
	cmd.Flags().BoolVar(&f.force, "force", false, "Re-encode sources already in the target format")
}

func (f *jobFlags) addJobs(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "Files encoded concurrently (0 = one per logical CPU)")
}

// job resolves flags against cfg into a validated encoding.Job.
func (f *jobFlags) job(cmd *cobra.Command, cfg *config.Config, kind encoding.Kind, input, output string) (encoding.Job, error) {
	enc := cfg.Encoding
	job := encoding.Job{
		Input:   strings.TrimSpace(input),
		Output:  strings.TrimSpace(output),
		Force:   f.force,
		Crop:    enc.Crop,
		Workers: enc.Workers,
		TempDir: enc.TempDir,
	}
	if cmd.Flags().Changed("crop") {
		job.Crop = f.crop
	}
	if cmd.Flags().Changed("jobs") {
		job.Workers = f.jobs
	}

	var err error
	if job.Preset, err = encoding.ParsePreset(pick(f.preset, enc.Preset)); err != nil {
		return encoding.Job{}, err
	}
	if job.VideoCodec, err = encoding.ParseVideoCodec(pick(f.videoCodec, enc.VideoCodec)); err != nil {
		return encoding.Job{}, err
	}
	if job.AudioCodec, err = encoding.ParseAudioCodec(pick(f.audioCodec, enc.AudioCodec)); err != nil {
		return encoding.Job{}, err
	}
	if job.SubtitleCodec, err = encoding.ParseSubtitleCodec(pick(f.subtitleCodec, enc.SubtitleCodec)); err != nil {
		return encoding.Job{}, err
	}
	if job.ImageCodec, err = encoding.ParseImageCodec(pick(f.imageCodec, enc.ImageCodec)); err != nil {
		return encoding.Job{}, err
	}
	if job.Container, err = encoding.ParseContainer(pick(f.container, enc.Container)); err != nil {
		return encoding.Job{}, err
	}
	if err := job.Validate(kind); err != nil {
		return encoding.Job{}, err
	}
	return job, nil
}

func pick(flag, fallback string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	return fallback
}

type runFunc func(ctx context.Context, cfg *config.Config, logger *slog.Logger, job encoding.Job, opts []encoding.Option) (encoding.Report, error)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "video <path> <destination>",
		Short: "Transcode video files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKind(cmd, ctx, &flags, encoding.KindVideo, args, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger, job encoding.Job, opts []encoding.Option) (encoding.Report, error) {
				return newVideoEncoder(cfg, logger, job, opts).Encode(runCtx)
			})
		},
	}
	flags.addPreset(cmd)
	flags.addJobs(cmd)
	cmd.Flags().StringVar(&flags.videoCodec, "video-codec", "", "Video codec (av1, vp9, avc, hevc)")
	cmd.Flags().StringVar(&flags.audioCodec, "audio-codec", "", "Audio codec (copy, mp3, aac, opus)")
	cmd.Flags().StringVar(&flags.subtitleCodec, "subtitle-codec", "", "Subtitle codec (copy, srt, ass, mov_text, webvtt)")
	cmd.Flags().StringVar(&flags.container, "video-container", "", "Output container (mp4, mkv, webm)")
	cmd.Flags().BoolVar(&flags.crop, "crop", false, "Detect and remove black borders")
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "audio <path> <destination>",
		Short: "Transcode audio files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKind(cmd, ctx, &flags, encoding.KindAudio, args, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger, job encoding.Job, opts []encoding.Option) (encoding.Report, error) {
				eng, prober := newEngines(cfg, logger)
				return encoding.NewAudioEncoder(job, eng, prober, opts...).Encode(runCtx)
			})
		},
	}
	flags.addPreset(cmd)
	flags.addJobs(cmd)
	cmd.Flags().StringVar(&flags.audioCodec, "audio-codec", "", "Audio codec (copy, mp3, aac, opus)")
	return cmd
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "image <path> <destination>",
		Short: "Convert image files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKind(cmd, ctx, &flags, encoding.KindImage, args, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger, job encoding.Job, opts []encoding.Option) (encoding.Report, error) {
				imageEngine, err := newImageEngine(cfg, logger, job.ImageCodec)
				if err != nil {
					return encoding.Report{Kind: encoding.KindImage}, err
				}
				return encoding.NewImageEncoder(job, imageEngine, opts...).Encode(runCtx)
			})
		},
	}
	flags.addPreset(cmd)
	cmd.Flags().StringVar(&flags.imageCodec, "image-codec", "", "Image codec (jpeg, png, webp)")
	return cmd
}

func newStripAudioCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "strip-audio <path> <destination>",
		Short: "Copy videos without their audio streams",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKind(cmd, ctx, &flags, encoding.KindVideo, args, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger, job encoding.Job, opts []encoding.Option) (encoding.Report, error) {
				return newVideoEncoder(cfg, logger, job, opts).StripAudio(runCtx)
			})
		},
	}
	flags.addJobs(cmd)
	return cmd
}

func newTrimCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	var start, end string
	cmd := &cobra.Command{
		Use:   "trim <path> <destination>",
		Short: "Cut videos to a time range without re-encoding",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKind(cmd, ctx, &flags, encoding.KindVideo, args, func(runCtx context.Context, cfg *config.Config, logger *slog.Logger, job encoding.Job, opts []encoding.Option) (encoding.Report, error) {
				return newVideoEncoder(cfg, logger, job, opts).Trim(runCtx, strings.TrimSpace(start), strings.TrimSpace(end))
			})
		},
	}
	flags.addJobs(cmd)
	cmd.Flags().StringVar(&start, "start", "", "Start timestamp (seconds or [HH:]MM:SS)")
	cmd.Flags().StringVar(&end, "end", "", "End timestamp (seconds or [HH:]MM:SS)")
	return cmd
}

func newEngines(cfg *config.Config, logger *slog.Logger) (*engine.FFmpeg, *ffprobe.Prober) {
	eng := engine.NewFFmpeg(engine.WithBinary(cfg.Engines.FFmpeg), engine.WithLogger(logger))
	prober := ffprobe.NewProber(
		ffprobe.WithFFprobe(cfg.Engines.FFprobe),
		ffprobe.WithFFmpeg(cfg.Engines.FFmpeg),
		ffprobe.WithLogger(logger),
	)
	return eng, prober
}

func newVideoEncoder(cfg *config.Config, logger *slog.Logger, job encoding.Job, opts []encoding.Option) *encoding.VideoEncoder {
	eng, prober := newEngines(cfg, logger)
	return encoding.NewVideoEncoder(job, eng, prober, opts...)
}

func newImageEngine(cfg *config.Config, logger *slog.Logger, codec encoding.ImageCodec) (encoding.ImageEngine, error) {
	if cfg.Engines.ImageEngine != config.ImageEngineNative {
		return engine.NewMagick(engine.WithBinary(cfg.Engines.Magick), engine.WithLogger(logger)), nil
	}
	if codec == encoding.ImageWebP {
		return nil, services.Wrap(services.ErrInvalidConfiguration, "image", "engine",
			"the native image engine writes jpeg and png only; use image_engine = \"magick\" for webp", nil)
	}
	return engine.NewNative(engine.WithLogger(logger)), nil
}

// runKind is the shared body of every encoding command: resolve the job,
// lock the destination, run, then report.
func runKind(cmd *cobra.Command, ctx *commandContext, flags *jobFlags, kind encoding.Kind, args []string, run runFunc) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	job, err := flags.job(cmd, cfg, kind, args[0], args[1])
	if err != nil {
		return err
	}

	lock, err := runlock.Acquire(cfg.Encoding.TempDir, job.Output)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(logger, "destination lock not released", "lock_release_failed",
				logging.String("lock", lock.Path()), logging.Error(err))
		}
	}()

	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	opts := []encoding.Option{encoding.WithLogger(logger)}
	var recorder *metrics.Recorder
	if cfg.Metrics.Textfile != "" {
		recorder = metrics.NewRecorder()
		opts = append(opts, encoding.WithObserver(recorder))
	}

	report, runErr := run(runCtx, cfg, logger, job, opts)

	if recorder != nil {
		recorder.RunFinished(kind, time.Now())
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
				logging.String("path", cfg.Metrics.Textfile), logging.Error(err))
		}
	}
	if len(report.Results) > 0 {
		fmt.Fprint(cmd.OutOrStdout(), renderSummary(report, useColor(cmd.OutOrStdout())))
	}
	return runErr
}
