package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// MigrationDir returns the embedded migration directory for the dialect.
func MigrationDir(dialect Dialect) string {
	if dialect == DialectSQLite {
		return "migrations/sqlite"
	}
	return "migrations/postgres"
}

// Prepare points goose at the embedded migrations for the dialect.
func Prepare(dialect Dialect) error {
	goose.SetBaseFS(migrationFiles)
	gooseDialect := "postgres"
	if dialect == DialectSQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if database == nil {
		return nil
	}
	if err := Prepare(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, MigrationDir(dialect))
}

// RollbackOne reverts the most recent migration.
func RollbackOne(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if err := Prepare(dialect); err != nil {
		return err
	}
	return goose.DownContext(ctx, database, MigrationDir(dialect))
}

// Status logs the applied state of every migration.
func Status(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if err := Prepare(dialect); err != nil {
		return err
	}
	return goose.StatusContext(ctx, database, MigrationDir(dialect))
}
