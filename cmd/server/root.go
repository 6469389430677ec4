package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"willgate/internal/platform/config"
	"willgate/internal/platform/logger"
)

// commandContext loads configuration once for whichever subcommand runs.
type commandContext struct {
	cfg    config.Server
	logger *slog.Logger
}

func (c *commandContext) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger.New(cfg.LogLevel).With("env", cfg.Environment)
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "willgate",
		Short:         "Release-authorization service for pooled funds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	return rootCmd
}
