package encoding

import (
	"context"
	"iter"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/sourcegraph/conc/pool"

	"transcode/internal/logging"
	"transcode/internal/services"
)

// DefaultWorkers returns the logical CPU count.
func DefaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func resolveWorkers(requested int) int {
	if requested > 0 {
		return requested
	}
	return DefaultWorkers()
}

type fileFunc func(ctx context.Context, source string, claims *targetClaims) FileResult

// targetClaims tracks which source owns each target within one run, so two
// sources resolving to the same path never reach the engine together.
type targetClaims struct {
	mu     sync.Mutex
	owners map[string]string
}

func newTargetClaims() *targetClaims {
	return &targetClaims{owners: make(map[string]string)}
}

// claim reserves target for source. It fails when another source of the run
// already holds the target, returning that owner, or when skip reports the
// target needs no work. skip runs under the lock.
func (c *targetClaims) claim(source, target string, skip func() bool) (string, bool) {
	key := filepath.Clean(target)
	c.mu.Lock()
	defer c.mu.Unlock()
	if owner, taken := c.owners[key]; taken {
		return owner, false
	}
	if skip() {
		return "", false
	}
	c.owners[key] = source
	return "", true
}

// skipped finishes a file whose target is not claimed. owner names the file
// holding the target when the skip came from a collision.
func skipped(logger *slog.Logger, tracker *stateTracker, result FileResult, owner string) FileResult {
	if owner != "" {
		logging.WarnWithContext(logger, "target already claimed by another file", "target_collision",
			logging.String(logging.FieldTarget, result.Target),
			logging.String("owner", owner),
		)
	}
	tracker.to(stateSkipped)
	result.Outcome = OutcomeSkipped
	return result
}

// process feeds discovered files to fn with at most workers in flight. A
// failing file never stops the others; cancellation stops feeding new files
// and lets in-flight ones unwind.
func process(ctx context.Context, kind Kind, files iter.Seq2[string, error], workers int, opts driverOptions, fn fileFunc) Report {
	runStart := time.Now()
	report := Report{Kind: kind}
	claims := newTargetClaims()
	var mu sync.Mutex

	start := func(source string) {
		for _, obs := range opts.observers {
			obs.FileStarted(kind, source)
		}
	}
	record := func(result FileResult) {
		mu.Lock()
		report.Results = append(report.Results, result)
		mu.Unlock()
		for _, obs := range opts.observers {
			obs.FileFinished(result)
		}
	}

	opts.logger.Debug("worker pool started", logging.Int("workers", workers))
	p := pool.New().WithMaxGoroutines(max(workers, 1))
	for source, err := range files {
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			start(source)
			result := FileResult{
				Kind:    kind,
				Source:  source,
				Outcome: OutcomeFailed,
				Err:     services.Wrap(services.ErrPathNotFound, "discover", "walk", source, err),
			}
			logFileResult(opts.fileLogger(ctx, source), result)
			record(result)
			continue
		}
		p.Go(func() {
			start(source)
			begin := time.Now()
			result := fn(ctx, source, claims)
			result.Kind = kind
			result.Source = source
			result.Elapsed = time.Since(begin)
			logFileResult(opts.fileLogger(ctx, source), result)
			record(result)
		})
	}
	p.Wait()

	report.sort()
	report.Elapsed = time.Since(runStart)
	return report
}

func logFileResult(logger *slog.Logger, result FileResult) {
	attrs := []logging.Attr{
		logging.String(logging.FieldTarget, result.Target),
		logging.String("outcome", string(result.Outcome)),
		logging.Duration("elapsed", result.Elapsed.Round(time.Millisecond)),
	}
	switch result.Outcome {
	case OutcomeFailed:
		attrs = append(attrs,
			logging.Error(result.Err),
			logging.String("category", services.Category(result.Err)),
		)
		logging.ErrorWithContext(logger, "file failed", "file_failed", attrs...)
	case OutcomeSkipped:
		logger.Info("file skipped", logging.Args(attrs...)...)
	default:
		attrs = append(attrs, logging.Int("invocations", result.Invocations))
		logger.Info("file encoded", logging.Args(attrs...)...)
	}
}

func newRunLogger(ctx context.Context, kind Kind, opts driverOptions) (context.Context, *slog.Logger) {
	ctx = services.WithKind(ctx, string(kind))
	return ctx, logging.WithContext(ctx, opts.logger)
}
