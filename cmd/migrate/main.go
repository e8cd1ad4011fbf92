package main

// Run database migrations:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate status

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"classify-backend/internal/shared/config"
	"classify-backend/internal/shared/storage/db"
	"classify-backend/internal/shared/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the user_profiles schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")

	withDB := func(fn func(ctx context.Context, database *sql.DB, dialect db.Dialect) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			url, err := resolveURL(databaseURL)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
			database, dialect, err := db.Connect(ctx, url, opts)
			if err != nil {
				return fmt.Errorf("failed to connect database: %w", err)
			}
			defer database.Close()
			return fn(ctx, database, dialect)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withDB(func(ctx context.Context, database *sql.DB, dialect db.Dialect) error {
				if err := db.RunMigrations(ctx, database, dialect); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				telemetry.Info("migrate.up_complete", map[string]any{"dialect": string(dialect)})
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withDB(func(ctx context.Context, database *sql.DB, dialect db.Dialect) error {
				if err := db.RollbackOne(ctx, database, dialect); err != nil {
					return fmt.Errorf("failed to roll back migration: %w", err)
				}
				telemetry.Info("migrate.down_complete", map[string]any{"dialect": string(dialect)})
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print applied and pending migrations",
			RunE: withDB(func(ctx context.Context, database *sql.DB, dialect db.Dialect) error {
				return db.Status(ctx, database, dialect)
			}),
		},
	)
	return root
}

func resolveURL(flagValue string) (string, error) {
	if url := strings.TrimSpace(flagValue); url != "" {
		return url, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return cfg.DatabaseURL, nil
}
