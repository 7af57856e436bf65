package service

import (
	"context"
	"errors"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrDuplicateSlug   = errors.New("slug already exists")
	ErrPageNotFound    = errors.New("page not found")
	ErrInvalidKind     = errors.New("unknown content kind")
	ErrInvalidSlug     = errors.New("invalid slug")
)

// Actor identifies who performs an administrative write.
type Actor struct {
	UserID   string
	Username string
}

// SearchService is the search surface consumed by the HTTP and live handlers.
type SearchService interface {
	// SearchAll fans query out to every entity adapter. Adapter failures are
	// contained and never fail the aggregate.
	SearchAll(ctx context.Context, query string, opts domain.SearchOptions) (*domain.AggregatedSearchResult, error)
	GetSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
	CorrectSpelling(query string) domain.CorrectionResult
	ExpandSynonyms(query string) []string
	// Search handles a submitted query: optional spell correction, then SearchAll.
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)
}

// ContentService defines public reads and admin writes of content items.
type ContentService interface {
	// List normalizes req.Page and req.Limit in place.
	List(ctx context.Context, kind domain.EntityKind, req *domain.ListContentRequest) (*domain.ListResult, error)
	GetPublished(ctx context.Context, kind domain.EntityKind, slug string) (*domain.Item, error)
	Create(ctx context.Context, actor Actor, kind domain.EntityKind, req *domain.CreateContentRequest) (*domain.Item, error)
	Update(ctx context.Context, actor Actor, kind domain.EntityKind, id string, req *domain.UpdateContentRequest) (*domain.Item, error)
	Delete(ctx context.Context, actor Actor, kind domain.EntityKind, id string) error
	// FlushCache drops every cached read on every instance.
	FlushCache(ctx context.Context, actor Actor)
}

// PageService defines static page reads and writes.
type PageService interface {
	Get(ctx context.Context, slug string) (*domain.Page, error)
	List(ctx context.Context) ([]domain.Page, error)
	Upsert(ctx context.Context, actor Actor, slug string, req *domain.UpsertPageRequest) (*domain.Page, error)
	Delete(ctx context.Context, actor Actor, slug string) error
}

// StatsService loads per-kind counts on a best-effort basis.
type StatsService interface {
	Stats(ctx context.Context) *domain.Stats
}

// Invalidator is notified after every successful write.
type Invalidator interface {
	ContentChanged(ctx context.Context, kind, eventType, id string)
	PageChanged(ctx context.Context, eventType, slug string)
	FlushAll(ctx context.Context)
}
