package service

import (
	"context"
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/audit"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/cache"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/lexicon"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/repository"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/pubsub"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

// PageConfig tunes the page service.
type PageConfig struct {
	TTL         time.Duration
	ReadPolicy  resilience.Policy
	WritePolicy resilience.Policy
}

type pageServiceImpl struct {
	repo        repository.PageRepository
	store       *ttlcache.Cache
	invalidator Invalidator
	cfg         PageConfig
}

// NewPageService creates a page service whose reads are memoized in store.
// Every write goes through invalidator so the memoized copies are dropped.
func NewPageService(repo repository.PageRepository, store *ttlcache.Cache, invalidator Invalidator, cfg PageConfig) PageService {
	return &pageServiceImpl{
		repo:        repo,
		store:       store,
		invalidator: invalidator,
		cfg:         cfg,
	}
}

func (s *pageServiceImpl) Get(ctx context.Context, slug string) (*domain.Page, error) {
	key := cache.PageKey(slug)
	if page, ok := ttlcache.GetAs[*domain.Page](s.store, key); ok {
		return page, nil
	}

	page, err := resilience.Do(ctx, s.cfg.ReadPolicy, func(ctx context.Context) (*domain.Page, error) {
		page, err := s.repo.GetBySlug(ctx, slug)
		return page, permanent(err)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.store.Set(key, page, s.cfg.TTL)
	return page, nil
}

func (s *pageServiceImpl) List(ctx context.Context) ([]domain.Page, error) {
	if pages, ok := ttlcache.GetAs[[]domain.Page](s.store, cache.PageListKey); ok {
		return pages, nil
	}

	pages, err := resilience.Do(ctx, s.cfg.ReadPolicy, s.repo.List)
	if err != nil {
		return nil, err
	}

	s.store.Set(cache.PageListKey, pages, s.cfg.TTL)
	return pages, nil
}

func (s *pageServiceImpl) Upsert(ctx context.Context, actor Actor, slug string, req *domain.UpsertPageRequest) (*domain.Page, error) {
	slug = lexicon.Slugify(slug)
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	page := &domain.Page{
		Slug:      slug,
		Title:     req.Title,
		Body:      req.Body,
		UpdatedBy: actor.UserID,
	}

	_, err := resilience.Do(ctx, s.cfg.WritePolicy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Upsert(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.PageChanged(ctx, pubsub.EventContentUpdated, slug)
	audit.Log(ctx, audit.Entry{
		Action:   audit.ActionUpsertPage,
		UserID:   actor.UserID,
		Entity:   "page",
		TargetID: slug,
	}, "page saved")

	return page, nil
}

func (s *pageServiceImpl) Delete(ctx context.Context, actor Actor, slug string) error {
	_, err := resilience.Do(ctx, s.cfg.WritePolicy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, permanent(s.repo.Delete(ctx, slug))
	})
	if err != nil {
		return mapRepoErr(err)
	}

	s.invalidator.PageChanged(ctx, pubsub.EventContentDeleted, slug)
	audit.Log(ctx, audit.Entry{
		Action:   audit.ActionDeletePage,
		UserID:   actor.UserID,
		Entity:   "page",
		TargetID: slug,
	}, "page deleted")

	return nil
}
