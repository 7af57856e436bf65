package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

// GormPageRepository implements PageRepository using GORM.
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GORM-based page repository.
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

func (r *GormPageRepository) GetBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	var model domain.PageModel
	result := r.db.WithContext(ctx).First(&model, "slug = ?", slug)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (r *GormPageRepository) List(ctx context.Context) ([]domain.Page, error) {
	var models []domain.PageModel
	if err := r.db.WithContext(ctx).Order("slug ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	pages := make([]domain.Page, len(models))
	for i := range models {
		pages[i] = *models[i].ToDomain()
	}
	return pages, nil
}

// Upsert creates the page or replaces its content.
func (r *GormPageRepository) Upsert(ctx context.Context, page *domain.Page) error {
	page.UpdatedAt = time.Now()
	model := domain.PageToModel(page)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "body", "updated_by", "updated_at"}),
	}).Create(model).Error
}

func (r *GormPageRepository) Delete(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Delete(&domain.PageModel{}, "slug = ?", slug)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}
