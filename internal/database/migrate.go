package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func openMigrationDB(connString string) (*sql.DB, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(GooseDialect); err != nil {
		return nil, err
	}
	db, err := sql.Open(MigrationDriver, connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToOpenMigrationDB, err)
	}
	return db, nil
}

// Migrate applies every pending embedded migration
func Migrate(ctx context.Context, connString string) error {
	db, err := openMigrationDB(connString)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.UpContext(ctx, db, MigrationsDir); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToRunMigrations, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.Default().Info(LogMsgMigrationsApplied, "version", version)
	return nil
}

// MigrateDown rolls back the most recent migration
func MigrateDown(ctx context.Context, connString string) error {
	db, err := openMigrationDB(connString)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.DownContext(ctx, db, MigrationsDir); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToRunMigrations, err)
	}
	return nil
}

// MigrationStatus logs the applied state of every migration
func MigrationStatus(ctx context.Context, connString string) error {
	db, err := openMigrationDB(connString)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.StatusContext(ctx, db, MigrationsDir)
}
