package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/osse101/RaceBot_Go/internal/config"
	"github.com/osse101/RaceBot_Go/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	cmd.AddCommand(
		migrateSubCmd("up", "Apply all pending migrations", database.Migrate),
		migrateSubCmd("down", "Roll back the most recent migration", database.MigrateDown),
		migrateSubCmd("status", "Print the applied state of every migration", database.MigrationStatus),
	)
	return cmd
}

type migrateFunc func(ctx context.Context, connString string) error

func migrateSubCmd(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg.GetDBConnString())
		},
	}
}
