package domain

import "time"

// Page is a slug-keyed static page such as "profil" or "kontak".
type Page struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertPageRequest represents a create-or-replace page request.
type UpsertPageRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
	Body  string `json:"body"`
}

// Stats holds published item counts per kind. Available is false when at
// least one count fell back to zero.
type Stats struct {
	Counts    map[EntityKind]int64 `json:"counts"`
	Total     int64                `json:"total"`
	Available bool                 `json:"available"`
}
