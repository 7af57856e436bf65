package domain

import (
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/pkg/database"
)

// ContentModel is the GORM model shared by the per-kind content tables.
// Callers select the table with db.Table(kind.Table()).
type ContentModel struct {
	ID          string              `gorm:"type:varchar(36);primaryKey"`
	Title       string              `gorm:"type:varchar(255);not null"`
	Slug        string              `gorm:"type:varchar(255);not null"`
	Summary     string              `gorm:"type:text"`
	Body        string              `gorm:"type:text"`
	Tags        database.StringList `gorm:"type:text"`
	Published   bool                `gorm:"not null;default:false"`
	ViewCount   int                 `gorm:"not null;default:0"`
	CreatedAt   time.Time           `gorm:"autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime"`
	PublishedAt *time.Time
}

// ToDomain converts ContentModel to domain Item.
func (m *ContentModel) ToDomain(kind EntityKind) *Item {
	return &Item{
		ID:          m.ID,
		Kind:        kind,
		Title:       m.Title,
		Slug:        m.Slug,
		Summary:     m.Summary,
		Body:        m.Body,
		Tags:        []string(m.Tags),
		Published:   m.Published,
		ViewCount:   m.ViewCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		PublishedAt: m.PublishedAt,
	}
}

// ItemToModel converts domain Item to ContentModel.
func ItemToModel(i *Item) *ContentModel {
	return &ContentModel{
		ID:          i.ID,
		Title:       i.Title,
		Slug:        i.Slug,
		Summary:     i.Summary,
		Body:        i.Body,
		Tags:        database.StringList(i.Tags),
		Published:   i.Published,
		ViewCount:   i.ViewCount,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		PublishedAt: i.PublishedAt,
	}
}

// PageModel is the GORM model for pages table.
type PageModel struct {
	Slug      string    `gorm:"type:varchar(100);primaryKey"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Body      string    `gorm:"type:text"`
	UpdatedBy string    `gorm:"type:varchar(36)"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for PageModel.
func (PageModel) TableName() string {
	return "pages"
}

// ToDomain converts PageModel to domain Page.
func (m *PageModel) ToDomain() *Page {
	return &Page{
		Slug:      m.Slug,
		Title:     m.Title,
		Body:      m.Body,
		UpdatedBy: m.UpdatedBy,
		UpdatedAt: m.UpdatedAt,
	}
}

// PageToModel converts domain Page to PageModel.
func PageToModel(p *Page) *PageModel {
	return &PageModel{
		Slug:      p.Slug,
		Title:     p.Title,
		Body:      p.Body,
		UpdatedBy: p.UpdatedBy,
		UpdatedAt: p.UpdatedAt,
	}
}
