package service

import (
	"context"
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/adapter"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/audit"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/lexicon"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/repository"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/pubsub"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/resilience"
)

// ContentConfig tunes the content service.
type ContentConfig struct {
	ReadPolicy   resilience.Policy
	WritePolicy  resilience.Policy
	ViewTimeout  time.Duration
	DefaultLimit int
	MaxLimit     int
}

type contentServiceImpl struct {
	repo        repository.ContentRepository
	adapters    map[domain.EntityKind]adapter.EntityAdapter
	invalidator Invalidator
	cfg         ContentConfig
}

// NewContentService creates a new content service. Public listings go
// through adapters; everything else goes to repo.
func NewContentService(repo repository.ContentRepository, adapters []adapter.EntityAdapter, invalidator Invalidator, cfg ContentConfig) ContentService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}

	byKind := make(map[domain.EntityKind]adapter.EntityAdapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	return &contentServiceImpl{
		repo:        repo,
		adapters:    byKind,
		invalidator: invalidator,
		cfg:         cfg,
	}
}

// List lists published items of kind. Paging in req is normalized in place.
func (s *contentServiceImpl) List(ctx context.Context, kind domain.EntityKind, req *domain.ListContentRequest) (*domain.ListResult, error) {
	a, ok := s.adapters[kind]
	if !ok {
		return nil, ErrInvalidKind
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.DefaultLimit
	}
	if req.Limit > s.cfg.MaxLimit {
		req.Limit = s.cfg.MaxLimit
	}

	return a.GetAll(ctx, domain.ListOptions{
		Page:          req.Page,
		Limit:         req.Limit,
		Search:        lexicon.NormalizeQuery(req.Search),
		PublishedOnly: true,
		SortBy:        domain.ParseSort(req.SortBy),
	})
}

// GetPublished returns a published item and counts the view. The view
// counter is best effort.
func (s *contentServiceImpl) GetPublished(ctx context.Context, kind domain.EntityKind, slug string) (*domain.Item, error) {
	if _, ok := s.adapters[kind]; !ok {
		return nil, ErrInvalidKind
	}

	item, err := resilience.Do(ctx, s.cfg.ReadPolicy, func(ctx context.Context) (*domain.Item, error) {
		item, err := s.repo.GetBySlug(ctx, kind, slug)
		return item, permanent(err)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !item.Published {
		return nil, ErrContentNotFound
	}

	_, counted := resilience.Optional(ctx, s.cfg.ViewTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.IncrementViews(ctx, kind, item.ID)
	})
	if counted {
		item.ViewCount++
	}
	return item, nil
}

// Create creates a new item of kind.
func (s *contentServiceImpl) Create(ctx context.Context, actor Actor, kind domain.EntityKind, req *domain.CreateContentRequest) (*domain.Item, error) {
	if _, ok := domain.ParseKind(string(kind)); !ok {
		return nil, ErrInvalidKind
	}

	slug := lexicon.Slugify(req.Slug)
	if slug == "" {
		slug = lexicon.Slugify(req.Title)
	}
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	item := &domain.Item{
		Kind:      kind,
		Title:     req.Title,
		Slug:      slug,
		Summary:   req.Summary,
		Body:      req.Body,
		Tags:      req.Tags,
		Published: req.Published,
	}

	_, err := resilience.Do(ctx, s.cfg.WritePolicy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, permanent(s.repo.Create(ctx, item))
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.invalidator.ContentChanged(ctx, string(kind), pubsub.EventContentCreated, item.ID)
	audit.Log(ctx, audit.Entry{
		Action:   audit.ActionCreateContent,
		UserID:   actor.UserID,
		Entity:   string(kind),
		TargetID: item.ID,
		Detail:   item.Slug,
	}, "content created")

	return item, nil
}

// Update applies a partial update to an item.
func (s *contentServiceImpl) Update(ctx context.Context, actor Actor, kind domain.EntityKind, id string, req *domain.UpdateContentRequest) (*domain.Item, error) {
	if _, ok := domain.ParseKind(string(kind)); !ok {
		return nil, ErrInvalidKind
	}

	item, err := resilience.Do(ctx, s.cfg.ReadPolicy, func(ctx context.Context) (*domain.Item, error) {
		item, err := s.repo.GetByID(ctx, kind, id)
		return item, permanent(err)
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Slug != nil {
		item.Slug = lexicon.Slugify(*req.Slug)
		if item.Slug == "" {
			return nil, ErrInvalidSlug
		}
	}
	if req.Summary != nil {
		item.Summary = *req.Summary
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.Tags != nil {
		item.Tags = req.Tags
	}
	if req.Published != nil {
		item.Published = *req.Published
		if !item.Published {
			item.PublishedAt = nil
		}
	}

	_, err = resilience.Do(ctx, s.cfg.WritePolicy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, permanent(s.repo.Update(ctx, item))
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.invalidator.ContentChanged(ctx, string(kind), pubsub.EventContentUpdated, item.ID)
	audit.Log(ctx, audit.Entry{
		Action:   audit.ActionUpdateContent,
		UserID:   actor.UserID,
		Entity:   string(kind),
		TargetID: item.ID,
	}, "content updated")

	return item, nil
}

// Delete removes an item.
func (s *contentServiceImpl) Delete(ctx context.Context, actor Actor, kind domain.EntityKind, id string) error {
	if _, ok := domain.ParseKind(string(kind)); !ok {
		return ErrInvalidKind
	}

	_, err := resilience.Do(ctx, s.cfg.WritePolicy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, permanent(s.repo.Delete(ctx, kind, id))
	})
	if err != nil {
		return mapRepoErr(err)
	}

	s.invalidator.ContentChanged(ctx, string(kind), pubsub.EventContentDeleted, id)
	audit.Log(ctx, audit.Entry{
		Action:   audit.ActionDeleteContent,
		UserID:   actor.UserID,
		Entity:   string(kind),
		TargetID: id,
	}, "content deleted")

	return nil
}

func (s *contentServiceImpl) FlushCache(ctx context.Context, actor Actor) {
	s.invalidator.FlushAll(ctx)
	audit.Log(ctx, audit.Entry{Action: audit.ActionFlushCache, UserID: actor.UserID}, "cache flushed")
}
