package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrDuplicateSlug   = errors.New("slug already exists")
	ErrPageNotFound    = errors.New("page not found")
)

// ContentReader is the read side every content backend provides.
type ContentReader interface {
	GetAll(ctx context.Context, kind domain.EntityKind, opts domain.ListOptions) (*domain.ListResult, error)
	Count(ctx context.Context, kind domain.EntityKind, publishedOnly bool) (int64, error)
}

// ContentRepository defines the interface for content persistence.
type ContentRepository interface {
	ContentReader
	GetByID(ctx context.Context, kind domain.EntityKind, id string) (*domain.Item, error)
	GetBySlug(ctx context.Context, kind domain.EntityKind, slug string) (*domain.Item, error)
	Create(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, kind domain.EntityKind, id string) error
	IncrementViews(ctx context.Context, kind domain.EntityKind, id string) error
}

// PageRepository defines the interface for static page persistence.
type PageRepository interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Page, error)
	List(ctx context.Context) ([]domain.Page, error)
	Upsert(ctx context.Context, page *domain.Page) error
	Delete(ctx context.Context, slug string) error
}

const defaultPageSize = 10

// searchTerms returns the non-empty, deduplicated, lowercased alternates of opts.
func searchTerms(opts domain.ListOptions) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range append([]string{opts.Search}, opts.Terms...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}

// likeEscape is the LIKE escape character. A backslash would need
// dialect-specific quoting on MySQL.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern turns t into a LIKE pattern matching it as a literal substring.
func likePattern(t string) string {
	return "%" + likeEscaper.Replace(t) + "%"
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`)

// wildcardPattern turns t into an Elasticsearch wildcard value matching it
// as a literal substring.
func wildcardPattern(t string) string {
	return "*" + wildcardEscaper.Replace(t) + "*"
}
