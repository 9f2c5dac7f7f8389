package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"elsa-proficiency-test/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads catalog JSONB from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE id=$1`, catalogID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Catalog{}, fmt.Errorf("load catalog %q: %w", catalogID, domain.ErrCatalogNotFound)
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	var c domain.Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return c, nil
}

// SaveCatalog upserts a catalog document.
func (l *CatalogLoader) SaveCatalog(ctx context.Context, c domain.Catalog) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO catalogs (id, title, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, data = EXCLUDED.data, updated_at = now()`,
		c.ID, c.Title, raw)
	if err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}
