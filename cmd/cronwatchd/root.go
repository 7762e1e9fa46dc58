package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cronwatchd",
		Short: "Recurring job scheduler with gateway health monitoring",
		Long: `cronwatchd runs jobs on "every", "at" and "cron" schedules and keeps
polling a gateway health endpoint. Without a subcommand it runs the daemon.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./cronwatchd.yaml, then ~/.config/cronwatch, then the system dir)")

	cmd.AddCommand(
		newRunCmd(opts),
		newInitConfigCmd(),
		newNextCmd(),
		newCheckCmd(opts),
	)
	return cmd
}
