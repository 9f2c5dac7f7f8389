package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"elsa-proficiency-test/internal/catalog"
	"elsa-proficiency-test/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches catalog content from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// CatalogRepository caches validated catalogs in Redis and falls back to a loader on cache miss.
// Catalogs are stored as: SET catalog:{catalogID} {json}
// Section totals are stored as: HSET catalog:{catalogID}:points {sectionID} {totalPoints}
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error) {
	if c, ok := r.cached(ctx, catalogID); ok {
		return c, nil
	}

	result, err, _ := r.sf.Do(catalogID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if c, ok := r.cached(ctx, catalogID); ok {
			return c, nil
		}

		c, err := r.loader.LoadCatalog(ctx, catalogID)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := catalog.Validate(c); err != nil {
			return domain.Catalog{}, fmt.Errorf("catalog %q: %w", catalogID, err)
		}

		raw, err := json.Marshal(c)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("marshal catalog: %w", err)
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		pipe.Set(ctx, r.catalogKey(catalogID), raw, ttl)
		for _, s := range c.Sections {
			pipe.HSet(ctx, r.pointsKey(catalogID), s.ID, s.TotalPoints)
		}
		if ttl > 0 {
			pipe.Expire(ctx, r.pointsKey(catalogID), ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("cache catalog %s: %v", catalogID, err)
		}

		return c, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// SectionPoints returns the cached section totals, keyed by section ID.
func (r *CatalogRepository) SectionPoints(ctx context.Context, catalogID string) (map[string]string, error) {
	return r.client.HGetAll(ctx, r.pointsKey(catalogID)).Result()
}

// Reconcile drops the cached copy of c when its section totals differ from c, so an
// edited catalog is not served stale after a restart. It reports whether it dropped
// the cache entry.
func (r *CatalogRepository) Reconcile(ctx context.Context, c domain.Catalog) (bool, error) {
	points, err := r.SectionPoints(ctx, c.ID)
	if err != nil {
		return false, err
	}
	if len(points) == 0 || sameTotals(points, c) {
		return false, nil
	}
	if err := r.client.Del(ctx, r.catalogKey(c.ID), r.pointsKey(c.ID)).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func sameTotals(points map[string]string, c domain.Catalog) bool {
	if len(points) != len(c.Sections) {
		return false
	}
	for _, s := range c.Sections {
		if points[s.ID] != strconv.Itoa(s.TotalPoints) {
			return false
		}
	}
	return true
}

func (r *CatalogRepository) cached(ctx context.Context, catalogID string) (domain.Catalog, bool) {
	raw, err := r.client.Get(ctx, r.catalogKey(catalogID)).Bytes()
	if err != nil || len(raw) == 0 {
		return domain.Catalog{}, false
	}
	var c domain.Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		log.Printf("decode cached catalog %s: %v", catalogID, err)
		return domain.Catalog{}, false
	}
	return c, true
}

func (r *CatalogRepository) catalogKey(catalogID string) string {
	return "catalog:" + catalogID
}

func (r *CatalogRepository) pointsKey(catalogID string) string {
	return "catalog:" + catalogID + ":points"
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
