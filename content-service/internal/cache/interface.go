package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// Key types used under the configured prefix.
const (
	TypeSearch  = "search"
	TypeSuggest = "suggest"
)

// SearchCache caches aggregated search results and suggestion lists.
type SearchCache interface {
	BuildKey(typ, query string, page, limit int) string
	// KeyPrefix is the common prefix of every key of typ; DeletePrefix
	// with it drops all of them.
	KeyPrefix(typ string) string

	GetResult(ctx context.Context, key string) (*domain.AggregatedSearchResult, error)
	SetResult(ctx context.Context, key string, result *domain.AggregatedSearchResult, ttl time.Duration) error
	GetSuggestions(ctx context.Context, key string) ([]domain.Suggestion, error)
	SetSuggestions(ctx context.Context, key string, suggestions []domain.Suggestion, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Generation counts search cache invalidations. A value computed before an
// invalidation must not be stored after it.
type Generation struct {
	n atomic.Uint64
}

// Bump must be called before the invalidating deletes run.
func (g *Generation) Bump() {
	g.n.Add(1)
}

func (g *Generation) Load() uint64 {
	return g.n.Load()
}

type keys struct {
	prefix string
}

func (k keys) BuildKey(typ, query string, page, limit int) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", k.prefix, typ, query, page, limit)
}

func (k keys) KeyPrefix(typ string) string {
	return fmt.Sprintf("%s:%s:", k.prefix, typ)
}
