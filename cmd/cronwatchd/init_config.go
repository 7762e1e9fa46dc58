package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amir-mohammad-HP/cronwatch/internal/config"
)

func newInitConfigCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the default cronwatchd.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(dir)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default is the system config dir)")
	return cmd
}
