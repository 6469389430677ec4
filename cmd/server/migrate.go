package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"willgate/internal/platform/config"
	"willgate/internal/platform/postgres"
	"willgate/internal/platform/sqlite"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema for the configured SQL store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ctx.cfg
			switch cfg.Store.Backend {
			case config.StorePostgres:
				db, err := postgres.Open(cmd.Context(), cfg.Postgres)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := postgres.Migrate(cmd.Context(), db); err != nil {
					return err
				}
			case config.StoreSQLite:
				// the schema is applied on open
				db, err := sqlite.Open(cmd.Context(), cfg.SQLite.Path)
				if err != nil {
					return err
				}
				if err := db.Close(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("store backend %q has no schema", cfg.Store.Backend)
			}
			ctx.logger.InfoContext(cmd.Context(), "schema applied", "backend", cfg.Store.Backend)
			return nil
		},
	}
}
