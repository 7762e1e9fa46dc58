package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amir-mohammad-HP/cronwatch/internal/app"
	"github.com/amir-mohammad-HP/cronwatch/internal/config"
	"github.com/amir-mohammad-HP/cronwatch/pkg/logger"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler and the gateway monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, opts)
		},
	}
}

func runDaemon(cmd *cobra.Command, opts *rootOptions) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewWithConfig(config.LoggerConfig(cfg))
	defer log.Close()
	if used := loader.ConfigFileUsed(); used != "" {
		log.Info("Using config file %s", used)
	} else {
		log.Info("No config file found, using defaults")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Application setup failed %s", err)
		return err
	}
	a.WatchConfig(loader)

	if err := a.Run(ctx); err != nil {
		log.Error("Application failed %s", err)
		return err
	}
	return nil
}
