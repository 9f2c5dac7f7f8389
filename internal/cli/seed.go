package cli

import (
	"context"
	"fmt"
	"log"

	"elsa-proficiency-test/internal/config"
	pgloader "elsa-proficiency-test/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCmd stores the selected catalog in Postgres.
func NewSeedCmd(configPath, catalogPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Validate a catalog and store it in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, *catalogPath)
		},
	}
}

func runSeed(ctx context.Context, configPath, catalogPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	c, err := loadCatalog(cfg, catalogPath)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pgloader.NewCatalogLoader(pool).SaveCatalog(ctx, c); err != nil {
		return err
	}
	log.Printf("catalog %q seeded", c.ID)
	return nil
}
