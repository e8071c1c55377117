package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"transcode/internal/encoding"
	"transcode/internal/fileutil"
)

// Recorder observes driver notifications into its own registry. It is safe
// for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	files         *prometheus.CounterVec
	fileDuration  *prometheus.HistogramVec
	inFlight      *prometheus.GaugeVec
	invocations   *prometheus.CounterVec
	lastRunFinish *prometheus.GaugeVec
}

// NewRecorder returns a recorder backed by a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transcode_files_total",
				Help: "Files processed, by media kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		fileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transcode_file_duration_seconds",
				Help:    "Wall time spent per file",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
			},
			[]string{"kind"},
		),
		inFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "transcode_files_in_flight",
				Help: "Files currently being processed",
			},
			[]string{"kind"},
		),
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transcode_engine_invocations_total",
				Help: "Engine invocations, two per VP9 file",
			},
			[]string{"kind"},
		),
		lastRunFinish: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "transcode_last_run_timestamp_seconds",
				Help: "Unix time the last run of each kind finished",
			},
			[]string{"kind"},
		),
	}
}

// FileStarted implements encoding.Observer.
func (r *Recorder) FileStarted(kind encoding.Kind, _ string) {
	r.inFlight.WithLabelValues(string(kind)).Inc()
}

// FileFinished implements encoding.Observer.
func (r *Recorder) FileFinished(result encoding.FileResult) {
	kind := string(result.Kind)
	r.files.WithLabelValues(kind, string(result.Outcome)).Inc()
	r.inFlight.WithLabelValues(kind).Dec()
	r.fileDuration.WithLabelValues(kind).Observe(result.Elapsed.Seconds())
	if result.Invocations > 0 {
		r.invocations.WithLabelValues(kind).Add(float64(result.Invocations))
	}
}

// RunFinished stamps the completion time of a run.
func (r *Recorder) RunFinished(kind encoding.Kind, at time.Time) {
	r.lastRunFinish.WithLabelValues(string(kind)).Set(float64(at.Unix()))
}

// WriteTextfile writes every metric to path, replacing it atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := fileutil.EnsureParentDir(path); err != nil {
		return fmt.Errorf("metrics textfile: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics textfile: %w", err)
	}
	return nil
}
