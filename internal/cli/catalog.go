package cli

import (
	"fmt"

	"elsa-proficiency-test/internal/catalog"
	"elsa-proficiency-test/internal/config"
	"elsa-proficiency-test/internal/domain"
)

// loadCatalog resolves the startup catalog: flag path, then config path, then the
// embedded reference. A path equal to an embedded catalog ID ("reference",
// "full-bank") selects that catalog. Any catalog that fails validation is a fatal
// startup error.
func loadCatalog(cfg config.Config, flagPath string) (domain.Catalog, error) {
	path := flagPath
	if path == "" {
		path = cfg.Catalog.Path
	}
	if path == "" {
		path = catalog.ReferenceID
	}
	c, ok, err := catalog.Builtin(path)
	if !ok {
		c, err = catalog.LoadFile(path)
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog: %w", err)
	}
	if cfg.Catalog.ID != "" && cfg.Catalog.ID != c.ID {
		return domain.Catalog{}, fmt.Errorf("catalog: configured id %q but loaded %q", cfg.Catalog.ID, c.ID)
	}
	return c, nil
}

// servedCatalogs is every embedded catalog plus the startup one, keyed by ID.
func servedCatalogs(startup domain.Catalog) (map[string]domain.Catalog, error) {
	out := map[string]domain.Catalog{startup.ID: startup}
	for _, id := range catalog.BuiltinIDs() {
		if _, ok := out[id]; ok {
			continue
		}
		c, _, err := catalog.Builtin(id)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", id, err)
		}
		out[id] = c
	}
	return out, nil
}
