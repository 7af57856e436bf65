package domain

import (
	"time"
)

// EntityKind is a content category with its own table and adapter.
type EntityKind string

const (
	KindBerita  EntityKind = "berita"
	KindArtikel EntityKind = "artikel"
	KindLayanan EntityKind = "layanan"
)

// Kinds returns every entity kind in presentation order.
func Kinds() []EntityKind {
	return []EntityKind{KindBerita, KindArtikel, KindLayanan}
}

// ParseKind validates a kind coming from a URL or message.
func ParseKind(s string) (EntityKind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Table is the relational table (or search index suffix) holding the kind.
func (k EntityKind) Table() string {
	return string(k)
}

// SortBy is the adapter-side ordering of a listing.
type SortBy string

const (
	SortNewest  SortBy = "terbaru"
	SortOldest  SortBy = "terlama"
	SortPopular SortBy = "terpopuler"
	SortTitle   SortBy = "judul"
)

// ParseSort maps unknown values to SortNewest.
func ParseSort(s string) SortBy {
	switch SortBy(s) {
	case SortOldest, SortPopular, SortTitle:
		return SortBy(s)
	default:
		return SortNewest
	}
}

// Item is a single piece of published or draft content.
type Item struct {
	ID          string     `json:"id"`
	Kind        EntityKind `json:"kind"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary,omitempty"`
	Body        string     `json:"body,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Published   bool       `json:"published"`
	ViewCount   int        `json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// URL is the public path of the item.
func (i *Item) URL() string {
	return "/" + string(i.Kind) + "/" + i.Slug
}

// ListOptions is the uniform query accepted by every entity adapter.
type ListOptions struct {
	Page          int
	Limit         int
	Search        string
	Terms         []string // optional alternates OR'd with Search
	PublishedOnly bool
	SortBy        SortBy
}

// Normalize clamps paging and fills the default sort.
func (o *ListOptions) Normalize(defaultLimit int) {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = defaultLimit
	}
	o.SortBy = ParseSort(string(o.SortBy))
}

// Offset is the zero-based row offset of the page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// ListResult is one page of items.
type ListResult struct {
	Data       []Item `json:"data"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

// EmptyListResult is what a failed or skipped adapter contributes.
func EmptyListResult() *ListResult {
	return &ListResult{Data: []Item{}}
}

// TotalPages computes ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// CreateContentRequest represents a create content request.
type CreateContentRequest struct {
	Title     string   `json:"title" binding:"required,min=1,max=255"`
	Slug      string   `json:"slug"`
	Summary   string   `json:"summary"`
	Body      string   `json:"body"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}

// UpdateContentRequest represents a partial update.
type UpdateContentRequest struct {
	Title     *string  `json:"title"`
	Slug      *string  `json:"slug"`
	Summary   *string  `json:"summary"`
	Body      *string  `json:"body"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

// ListContentRequest represents a public listing request.
type ListContentRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"q"`
	SortBy string `form:"sort"`
}
