package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"transcode/internal/config"
	"transcode/internal/encoding"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var path string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(path) == "" {
				path = "~/.config/transcode/config.toml"
			}
			target, err := config.ExpandPath(path)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if err := config.CreateSample(target, overwrite); err != nil {
				return fmt.Errorf("write sample config: %w (pass --overwrite to replace it)", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration written to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Where to write the file (default ~/.config/transcode/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// newConfigValidateCommand loads the configuration the way an encode run
// would and prints the defaults a run without flags would use.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and show the effective job defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := ctx.configPath
			if !ctx.configFound {
				source = "built-in defaults (no file found)"
			}
			workers := strconv.Itoa(cfg.Encoding.Workers)
			if cfg.Encoding.Workers == 0 {
				workers = fmt.Sprintf("%d (logical CPUs)", encoding.DefaultWorkers())
			}
			rows := [][]string{
				{"Preset", cfg.Encoding.Preset},
				{"Video codec", cfg.Encoding.VideoCodec},
				{"Audio codec", cfg.Encoding.AudioCodec},
				{"Subtitle codec", cfg.Encoding.SubtitleCodec},
				{"Container", cfg.Encoding.Container},
				{"Image codec", cfg.Encoding.ImageCodec},
				{"Image engine", cfg.Engines.ImageEngine},
				{"Workers", workers},
				{"Crop", yesNo(cfg.Encoding.Crop)},
				{"Temp dir", cfg.Encoding.TempDir},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration valid (%s)\n", source)
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}
