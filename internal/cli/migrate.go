package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"elsa-proficiency-test/internal/config"
	pgmigrations "elsa-proficiency-test/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies (or rolls back) the catalog schema.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if rollback {
				return withMigrator(cmd.Context(), cfg, func(ctx context.Context, m *migrate.Migrator) error {
					group, err := m.Rollback(ctx)
					if err != nil {
						return err
					}
					log.Printf("rolled back %s", group)
					return nil
				})
			}
			return runMigrationsWithConfig(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	return withMigrator(ctx, cfg, func(ctx context.Context, m *migrate.Migrator) error {
		group, err := m.Migrate(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			log.Printf("catalog schema up to date")
			return nil
		}
		log.Printf("migrated to %s", group)
		return nil
	})
}

func withMigrator(ctx context.Context, cfg config.Config, fn func(context.Context, *migrate.Migrator) error) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	return fn(ctx, migrator)
}
