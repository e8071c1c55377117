package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"transcode/internal/fileutil"
	"transcode/internal/logging"
	"transcode/internal/services"
)

var commandContext = exec.CommandContext

const (
	stderrTailLines = 20
	killWaitDelay   = 5 * time.Second
)

// command describes one subprocess run on behalf of an engine.
type command struct {
	engine   string
	binary   string
	args     []string
	output   string
	settings runSettings
	// stdout receives the process stdout when set, typically the progress pipe.
	stdout func(io.Reader)
}

// run executes cmd, removing the output on any failure. Cancellation is
// reported as the context error, everything else as ErrEngineFailure.
func run(ctx context.Context, logger *slog.Logger, c command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := commandContext(ctx, c.binary, c.args...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = killWaitDelay
	stderr := newTailBuffer(stderrTailLines)
	cmd.Stderr = stderr

	var stdout io.ReadCloser
	if c.stdout != nil {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return services.Wrap(services.ErrEngineFailure, c.engine, "stdout pipe", c.settings.label, err)
		}
		stdout = pipe
	}

	logger.Debug("engine command",
		logging.String("binary", c.binary),
		logging.String("args", strings.Join(c.args, " ")),
	)

	if err := cmd.Start(); err != nil {
		cleanupOutput(logger, c.output)
		return services.Wrap(services.ErrEngineFailure, c.engine, "start", c.settings.label, err)
	}

	done := make(chan struct{})
	if stdout != nil {
		go func() {
			defer close(done)
			c.stdout(stdout)
		}()
	} else {
		close(done)
	}
	<-done
	waitErr := cmd.Wait()
	if waitErr == nil {
		return nil
	}

	cleanupOutput(logger, c.output)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w", c.engine, c.settings.label, ctxErr)
	}
	message := c.settings.label
	if tail := stderr.String(); tail != "" {
		message = strings.TrimSpace(message + ": " + tail)
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return services.Wrap(services.ErrEngineFailure, c.engine, fmt.Sprintf("exit status %d", exitErr.ExitCode()), message, nil)
	}
	return services.Wrap(services.ErrEngineFailure, c.engine, "wait", message, waitErr)
}

func cleanupOutput(logger *slog.Logger, output string) {
	removed, err := fileutil.RemoveIfExists(output)
	switch {
	case err != nil:
		logging.WarnWithContext(logger, "failed to remove partial output", "partial_output_cleanup_failed",
			logging.String(logging.FieldTarget, output),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the file manually before rerunning"),
		)
	case removed:
		logger.Debug("removed partial output", logging.String(logging.FieldTarget, output))
	}
}

func requirePaths(engineName, input, output string) error {
	if strings.TrimSpace(input) == "" {
		return services.Wrap(services.ErrInvalidConfiguration, engineName, "run", "input path required", nil)
	}
	if strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrInvalidConfiguration, engineName, "run", "output path required", nil)
	}
	return nil
}
