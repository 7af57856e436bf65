package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/config"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

func newRedisCache(t *testing.T) (*RedisSearchCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisSearchCache(config.RedisConfig{Address: mr.Addr()}, "cms")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func implementations(t *testing.T) map[string]SearchCache {
	redisCache, _ := newRedisCache(t)
	return map[string]SearchCache{
		"memory": NewMemorySearchCache(ttlcache.New(), "cms"),
		"redis":  redisCache,
	}
}

func TestSearchCache_Contract(t *testing.T) {
	ctx := context.Background()

	for name, c := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			key := c.BuildKey(TypeSearch, "pajak", 1, 9)
			assert.Equal(t, "cms:search:pajak:1:9", key)

			_, err := c.GetResult(ctx, key)
			assert.ErrorIs(t, err, ErrCacheMiss)

			result := domain.NewAggregatedSearchResult("pajak", 1, 9)
			result.Items[domain.KindBerita] = []domain.Item{{ID: "1", Kind: domain.KindBerita, Title: "Pajak"}}
			result.Total = 1
			require.NoError(t, c.SetResult(ctx, key, result, time.Minute))

			got, err := c.GetResult(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, 1, got.Total)
			assert.Equal(t, "Pajak", got.Items[domain.KindBerita][0].Title)

			skey := c.BuildKey(TypeSuggest, "paj", 1, 8)
			require.NoError(t, c.SetSuggestions(ctx, skey, []domain.Suggestion{{Text: "Pajak", Type: domain.KindBerita}}, time.Minute))
			sugg, err := c.GetSuggestions(ctx, skey)
			require.NoError(t, err)
			assert.Len(t, sugg, 1)

			other := c.BuildKey(TypeSearch, "pajak", 1, 90)
			require.NoError(t, c.SetResult(ctx, other, result, time.Minute))
			require.NoError(t, c.Delete(ctx, key))
			_, err = c.GetResult(ctx, key)
			assert.ErrorIs(t, err, ErrCacheMiss)
			_, err = c.GetResult(ctx, other)
			assert.NoError(t, err, "delete is exact, not a prefix match")
			require.NoError(t, c.Delete(ctx))

			require.NoError(t, c.DeletePrefix(ctx, c.KeyPrefix(TypeSearch)))
			_, err = c.GetResult(ctx, other)
			assert.ErrorIs(t, err, ErrCacheMiss)
			_, err = c.GetSuggestions(ctx, skey)
			assert.NoError(t, err, "other prefixes survive")
		})
	}
}

func TestMemorySearchCache_PreservesIdentity(t *testing.T) {
	c := NewMemorySearchCache(ttlcache.New(), "cms")
	result := domain.NewAggregatedSearchResult("x", 1, 3)

	require.NoError(t, c.SetResult(context.Background(), "k", result, time.Minute))
	got, err := c.GetResult(context.Background(), "k")
	require.NoError(t, err)
	assert.Same(t, result, got)
}

func TestRedisSearchCache_TTL(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetSuggestions(ctx, "cms:suggest:a:1:8", []domain.Suggestion{}, time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.GetSuggestions(ctx, "cms:suggest:a:1:8")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisSearchCache_DeletePrefixManyKeys(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	for i := 0; i < scanBatch*2+5; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("cms:search:q%d:1:9", i), "{}"))
	}
	require.NoError(t, mr.Set("cms:stats", "{}"))

	require.NoError(t, c.DeletePrefix(ctx, c.KeyPrefix(TypeSearch)))
	assert.Equal(t, []string{"cms:stats"}, mr.Keys())
}

func TestNewRedisSearchCache_Unreachable(t *testing.T) {
	_, err := NewRedisSearchCache(config.RedisConfig{Address: "127.0.0.1:1"}, "cms")
	assert.Error(t, err)
}

func TestGeneration(t *testing.T) {
	var g Generation
	before := g.Load()

	g.Bump()
	g.Bump()
	assert.Equal(t, before+2, g.Load())
}
