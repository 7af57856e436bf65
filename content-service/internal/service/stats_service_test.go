package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/cache"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

type countReader struct {
	counts map[domain.EntityKind]int64
	slow   domain.EntityKind
	broken domain.EntityKind
}

func (r *countReader) GetAll(ctx context.Context, kind domain.EntityKind, opts domain.ListOptions) (*domain.ListResult, error) {
	return domain.EmptyListResult(), nil
}

func (r *countReader) Count(ctx context.Context, kind domain.EntityKind, publishedOnly bool) (int64, error) {
	if kind == r.broken {
		return 0, errors.New("count failed")
	}
	if kind == r.slow {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return r.counts[kind], nil
}

func TestStatsService(t *testing.T) {
	counts := map[domain.EntityKind]int64{domain.KindBerita: 4, domain.KindArtikel: 2, domain.KindLayanan: 7}

	t.Run("all counts available and cached", func(t *testing.T) {
		store := ttlcache.New()
		svc := NewStatsService(&countReader{counts: counts}, store, time.Minute, 50*time.Millisecond)

		s := svc.Stats(context.Background())
		assert.True(t, s.Available)
		assert.EqualValues(t, 13, s.Total)
		assert.EqualValues(t, 7, s.Counts[domain.KindLayanan])
		assert.True(t, store.Has(cache.StatsKey))
	})

	t.Run("slow and failing counts default to zero", func(t *testing.T) {
		store := ttlcache.New()
		svc := NewStatsService(&countReader{counts: counts, slow: domain.KindBerita, broken: domain.KindArtikel}, store, time.Minute, 50*time.Millisecond)

		start := time.Now()
		s := svc.Stats(context.Background())

		assert.Less(t, time.Since(start), 500*time.Millisecond, "no retry, bounded by timeout")
		assert.False(t, s.Available)
		assert.Zero(t, s.Counts[domain.KindBerita])
		assert.Zero(t, s.Counts[domain.KindArtikel])
		assert.EqualValues(t, 7, s.Total)
		assert.False(t, store.Has(cache.StatsKey), "defaults are not cached")
	})
}
