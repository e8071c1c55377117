package encoding

import (
	"log/slog"
	"time"

	"transcode/internal/engine"
	"transcode/internal/logging"
)

const progressBucketPercent = 10

// progressLogger converts engine progress into sampled log lines. It is used
// by a single invocation at a time.
func progressLogger(logger *slog.Logger, durationSeconds int) func(engine.Progress) {
	sampler := logging.NewProgressSampler(progressBucketPercent)
	return func(p engine.Progress) {
		percent := -1.0
		if durationSeconds > 0 {
			percent = min(p.OutTime.Seconds()/float64(durationSeconds)*100, 100)
		}
		if p.Done {
			percent = 100
		}
		if !sampler.ShouldLog(p.Label, percent) {
			return
		}
		attrs := []logging.Attr{
			logging.String("pass", p.Label),
			logging.Duration("position", p.OutTime.Round(time.Second)),
		}
		if percent >= 0 {
			attrs = append(attrs, logging.Float64("percent", float64(int(percent*10))/10))
		}
		if p.Speed > 0 {
			attrs = append(attrs, logging.Float64("speed", p.Speed))
		}
		logger.Info("encoding progress", logging.Args(attrs...)...)
	}
}
