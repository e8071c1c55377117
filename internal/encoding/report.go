package encoding

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Outcome is the terminal state of one file.
type Outcome string

const (
	OutcomeEncoded Outcome = "encoded"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// FileResult records what happened to one discovered file.
type FileResult struct {
	Kind        Kind
	Source      string
	Target      string
	Outcome     Outcome
	Err         error
	Elapsed     time.Duration
	Invocations int
}

// Report collects the results of one run, ordered by source path.
type Report struct {
	Kind    Kind
	Results []FileResult
	Elapsed time.Duration
}

// Count returns how many files ended with outcome.
func (r Report) Count(outcome Outcome) int {
	n := 0
	for _, result := range r.Results {
		if result.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (r Report) Failures() []FileResult {
	var failed []FileResult
	for _, result := range r.Results {
		if result.Outcome == OutcomeFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Invocations returns the total engine invocations across the run.
func (r Report) Invocations() int {
	total := 0
	for _, result := range r.Results {
		total += result.Invocations
	}
	return total
}

// Err joins every per-file failure, or returns nil when none failed.
func (r Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Source, f.Err))
	}
	return fmt.Errorf("%d of %d %s files failed: %w", len(failures), len(r.Results), r.Kind, errors.Join(errs...))
}

func (r *Report) sort() {
	slices.SortFunc(r.Results, func(a, b FileResult) int {
		return cmp.Compare(a.Source, b.Source)
	})
}

// finish returns the error a driver reports for the completed run:
// cancellation first, then any per-file failures.
func (r Report) finish(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s run: %w", r.Kind, err)
	}
	return r.Err()
}
