package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transcode/internal/metadata"
	"transcode/internal/services"
)

func newMetadataCommand() *cobra.Command {
	metaCmd := &cobra.Command{
		Use:         "metadata",
		Short:       "Manage container tags applied during video encoding",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	metaCmd.AddCommand(newMetadataSetCommand())
	metaCmd.AddCommand(newMetadataShowCommand())
	return metaCmd
}

func newMetadataSetCommand() *cobra.Command {
	var rec metadata.Record
	cmd := &cobra.Command{
		Use:   "set <video>",
		Short: "Write the title and description sidecar for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return services.Wrap(services.ErrPathNotFound, "metadata", "set", args[0], err)
			}
			if rec.Empty() {
				return services.Wrap(services.ErrInvalidConfiguration, "metadata", "set", "--title or --description required", nil)
			}
			path, err := metadata.Save(args[0], rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&rec.Title, "title", "", "Title tag")
	cmd.Flags().StringVar(&rec.Description, "description", "", "Description tag")
	return cmd
}

func newMetadataShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <video>",
		Short: "Print the sidecar tags for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, ok, err := metadata.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "No sidecar at %s\n", metadata.SidecarPath(args[0]))
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Tag", "Value"}, [][]string{
				{"title", rec.Title},
				{"description", rec.Description},
			}, nil))
			return nil
		},
	}
}
