package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"transcode/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, services.ExitMessage(err))
		os.Exit(1)
	}
}
