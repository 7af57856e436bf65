package cache

import (
	"context"
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

// MemorySearchCache stores results in the process-wide TTL cache. Values
// are shared, not copied; callers must not mutate what they get back.
type MemorySearchCache struct {
	keys
	store *ttlcache.Cache
}

// NewMemorySearchCache creates a search cache on top of store.
func NewMemorySearchCache(store *ttlcache.Cache, prefix string) *MemorySearchCache {
	return &MemorySearchCache{keys: keys{prefix: prefix}, store: store}
}

func (c *MemorySearchCache) GetResult(ctx context.Context, key string) (*domain.AggregatedSearchResult, error) {
	v, ok := ttlcache.GetAs[*domain.AggregatedSearchResult](c.store, key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *MemorySearchCache) SetResult(ctx context.Context, key string, result *domain.AggregatedSearchResult, ttl time.Duration) error {
	c.store.Set(key, result, ttl)
	return nil
}

func (c *MemorySearchCache) GetSuggestions(ctx context.Context, key string) ([]domain.Suggestion, error) {
	v, ok := ttlcache.GetAs[[]domain.Suggestion](c.store, key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *MemorySearchCache) SetSuggestions(ctx context.Context, key string, suggestions []domain.Suggestion, ttl time.Duration) error {
	c.store.Set(key, suggestions, ttl)
	return nil
}

func (c *MemorySearchCache) Delete(ctx context.Context, keys ...string) error {
	c.store.Delete(keys...)
	return nil
}

func (c *MemorySearchCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.store.DeletePrefix(prefix)
	return nil
}

// Close is a no-op; the shared store is owned by the caller.
func (c *MemorySearchCache) Close() error {
	return nil
}
