package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"elsa-proficiency-test/internal/catalog"
	"elsa-proficiency-test/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches catalog content from a backing store (e.g., Postgres, YAML file).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// CatalogRepository caches validated catalogs with TTL to avoid repeated loads.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCatalog
}

type cachedCatalog struct {
	catalog   domain.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCatalog),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[catalogID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.catalog, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[catalogID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.catalog, nil
		}
		r.mu.RUnlock()

		c, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := catalog.Validate(c); err != nil {
			return domain.Catalog{}, fmt.Errorf("catalog %q: %w", catalogID, err)
		}

		r.mu.Lock()
		r.cache[catalogID] = cachedCatalog{
			catalog:   c,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// StaticCatalogLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCatalogLoader struct {
	catalogs map[string]domain.Catalog
}

func NewStaticCatalogLoader(catalogs map[string]domain.Catalog) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalogs: catalogs}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context, catalogID string) (domain.Catalog, error) {
	if c, ok := l.catalogs[catalogID]; ok {
		return c, nil
	}
	return domain.Catalog{}, domain.ErrCatalogNotFound
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
