package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amir-mohammad-HP/cronwatch/internal/config"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
	"github.com/amir-mohammad-HP/cronwatch/pkg/monitor"
)

var errUnhealthy = errors.New("gateway is not healthy")

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [endpoint]",
		Short: "Probe the gateway health endpoint once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			endpoint := cfg.Monitor.Endpoint
			if len(args) == 1 {
				endpoint = args[0]
			}

			mon := monitor.New(
				monitor.WithHealthPath(cfg.Monitor.HealthPath),
				monitor.WithTimeout(cfg.Monitor.Timeout),
				monitor.WithLogger(logger.NewNop()),
			)
			if err := mon.SetEndpoint(endpoint); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			st, err := mon.CheckNow(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s%s: %s", st.Endpoint, cfg.Monitor.HealthPath, st.Status)
			if st.LastHTTPStatus != 0 {
				fmt.Fprintf(out, " (HTTP %d, %s)", st.LastHTTPStatus, st.LastLatency)
			}
			fmt.Fprintln(out)
			if st.Status != monitor.Connected {
				return fmt.Errorf("%w: %s", errUnhealthy, st.LastError)
			}
			return nil
		},
	}
}
