package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"transcode/internal/workdir"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove two-pass statistics left in the temp directory by interrupted runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result := workdir.CleanStale(cfg.Encoding.TempDir, olderThan, logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s) from %s\n", len(result.Removed), cfg.Encoding.TempDir)
			if len(result.Errors) > 0 {
				first := result.Errors[0]
				return fmt.Errorf("clean %s: %d error(s), first: %w", first.Path, len(result.Errors), first.Error)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only remove files older than this (0 removes all)")
	return cmd
}
