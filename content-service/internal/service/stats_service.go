package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/cache"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/repository"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

type statsServiceImpl struct {
	reader  repository.ContentReader
	store   *ttlcache.Cache
	ttl     time.Duration
	timeout time.Duration
}

// NewStatsService creates a stats service. Each count gets timeout and no
// retry; a failed count reads as zero.
func NewStatsService(reader repository.ContentReader, store *ttlcache.Cache, ttl, timeout time.Duration) StatsService {
	return &statsServiceImpl{
		reader:  reader,
		store:   store,
		ttl:     ttl,
		timeout: timeout,
	}
}

func (s *statsServiceImpl) Stats(ctx context.Context) *domain.Stats {
	if stats, ok := ttlcache.GetAs[*domain.Stats](s.store, cache.StatsKey); ok {
		return stats
	}

	kinds := domain.Kinds()
	counts := make([]int64, len(kinds))
	oks := make([]bool, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		g.Go(func() error {
			counts[i], oks[i] = resilience.Optional(ctx, s.timeout, func(ctx context.Context) (int64, error) {
				return s.reader.Count(ctx, kind, true)
			})
			return nil
		})
	}
	_ = g.Wait()

	stats := &domain.Stats{
		Counts:    make(map[domain.EntityKind]int64, len(kinds)),
		Available: true,
	}
	for i, kind := range kinds {
		stats.Counts[kind] = counts[i]
		stats.Total += counts[i]
		if !oks[i] {
			stats.Available = false
		}
	}

	// Defaults are not cached so the next request retries the store.
	if stats.Available {
		s.store.Set(cache.StatsKey, stats, s.ttl)
	}
	return stats
}
