package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transcode/internal/deps"
	"transcode/internal/preflight"
	"transcode/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the external engines are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.Check(cmd.Context(), deps.Engines(cfg))

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state, location := "ok", s.Path
				switch {
				case !s.Available() && s.Optional:
					state, location = "missing (optional)", s.Problem
				case !s.Available():
					state, location = "missing", s.Problem
				}
				rows = append(rows, []string{s.Name, state, location, s.Version, s.Purpose})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Engine", "Status", "Path", "Version", "Used for"}, rows, nil))

			dirs := preflight.RunAll(cfg)
			dirRows := make([][]string, 0, len(dirs))
			for _, r := range dirs {
				dirRows = append(dirRows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Directory", "OK", "Detail"}, dirRows, nil))
			if failed := preflight.Failed(dirs); len(failed) > 0 {
				return services.Wrap(services.ErrInvalidConfiguration, "check", "directories", failed[0].Detail, nil)
			}

			if missing := deps.Missing(statuses); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, m.Name)
				}
				return services.Wrap(services.ErrInvalidConfiguration, "check", "engines",
					fmt.Sprintf("required engines missing: %v", names), nil)
			}
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
