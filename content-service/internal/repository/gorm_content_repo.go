package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/lexicon"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/database"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// GormContentRepository implements ContentRepository using GORM, with one
// table per entity kind.
type GormContentRepository struct {
	db *gorm.DB
}

// NewGormContentRepository creates a new GORM-based content repository.
func NewGormContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

// Migrate creates the per-kind content tables and the pages table.
func Migrate(db *gorm.DB) error {
	for _, kind := range domain.Kinds() {
		if err := database.AutoMigrateTable(db, kind.Table(), &domain.ContentModel{}); err != nil {
			return err
		}
	}
	return database.AutoMigrate(db, &domain.PageModel{})
}

func (r *GormContentRepository) table(ctx context.Context, kind domain.EntityKind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.Table())
}

// GetAll lists one page of items matching opts.
func (r *GormContentRepository) GetAll(ctx context.Context, kind domain.EntityKind, opts domain.ListOptions) (*domain.ListResult, error) {
	l := log.Ctx(ctx)
	opts.Normalize(defaultPageSize)

	query := r.table(ctx, kind)
	if opts.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if terms := searchTerms(opts); len(terms) > 0 {
		clauses := make([]string, len(terms))
		args := make([]interface{}, len(terms))
		for i, t := range terms {
			clauses[i] = "LOWER(title) LIKE ? ESCAPE '" + likeEscape + "'"
			args[i] = likePattern(strings.ToLower(t))
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		l.Error().Err(err).Str(log.FieldEntity, string(kind)).Msg("failed to count contents")
		return nil, err
	}

	var models []domain.ContentModel
	err := query.Session(&gorm.Session{}).
		Order(orderClause(opts.SortBy)).
		Offset(opts.Offset()).
		Limit(opts.Limit).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldEntity, string(kind)).Msg("failed to list contents from db")
		return nil, err
	}

	items := make([]domain.Item, len(models))
	for i := range models {
		items[i] = *models[i].ToDomain(kind)
	}

	return &domain.ListResult{
		Data:       items,
		Total:      int(total),
		TotalPages: domain.TotalPages(int(total), opts.Limit),
	}, nil
}

func orderClause(sort domain.SortBy) string {
	switch sort {
	case domain.SortOldest:
		return "created_at ASC"
	case domain.SortPopular:
		return "view_count DESC, created_at DESC"
	case domain.SortTitle:
		return "title ASC"
	default:
		return "created_at DESC"
	}
}

// Count counts items of kind.
func (r *GormContentRepository) Count(ctx context.Context, kind domain.EntityKind, publishedOnly bool) (int64, error) {
	query := r.table(ctx, kind)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// GetByID retrieves an item by ID.
func (r *GormContentRepository) GetByID(ctx context.Context, kind domain.EntityKind, id string) (*domain.Item, error) {
	return r.first(ctx, kind, "id = ?", id)
}

// GetBySlug retrieves an item by slug.
func (r *GormContentRepository) GetBySlug(ctx context.Context, kind domain.EntityKind, slug string) (*domain.Item, error) {
	return r.first(ctx, kind, "slug = ?", slug)
}

func (r *GormContentRepository) first(ctx context.Context, kind domain.EntityKind, cond string, arg string) (*domain.Item, error) {
	var model domain.ContentModel
	result := r.table(ctx, kind).Where(cond, arg).Take(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldEntity, string(kind)).Msg("failed to get content")
		return nil, result.Error
	}
	return model.ToDomain(kind), nil
}

func (r *GormContentRepository) slugTaken(ctx context.Context, kind domain.EntityKind, slug, exceptID string) (bool, error) {
	var n int64
	err := r.table(ctx, kind).Where("slug = ? AND id <> ?", slug, exceptID).Count(&n).Error
	return n > 0, err
}

// Create creates a new item. ID and slug are generated when empty.
func (r *GormContentRepository) Create(ctx context.Context, item *domain.Item) error {
	l := log.Ctx(ctx)

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Slug == "" {
		item.Slug = lexicon.Slugify(item.Title)
	}
	if item.Published && item.PublishedAt == nil {
		now := time.Now()
		item.PublishedAt = &now
	}

	// A retried attempt whose first insert committed finds its own row.
	var existing domain.ContentModel
	err := r.table(ctx, item.Kind).Where("id = ?", item.ID).Limit(1).Find(&existing).Error
	if err != nil {
		return err
	}
	if existing.ID == item.ID && existing.Slug == item.Slug {
		item.CreatedAt = existing.CreatedAt
		item.UpdatedAt = existing.UpdatedAt
		l.Debug().Str("content_id", item.ID).Str(log.FieldEntity, string(item.Kind)).Msg("content already created")
		return nil
	}

	taken, err := r.slugTaken(ctx, item.Kind, item.Slug, item.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateSlug
	}

	model := domain.ItemToModel(item)
	if err := r.table(ctx, item.Kind).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldEntity, string(item.Kind)).Msg("failed to create content in db")
		return err
	}

	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	l.Debug().Str("content_id", item.ID).Str(log.FieldEntity, string(item.Kind)).Msg("content created in db")
	return nil
}

// Update overwrites the mutable fields of an existing item.
func (r *GormContentRepository) Update(ctx context.Context, item *domain.Item) error {
	if item.Published && item.PublishedAt == nil {
		now := time.Now()
		item.PublishedAt = &now
	}

	taken, err := r.slugTaken(ctx, item.Kind, item.Slug, item.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateSlug
	}

	item.UpdatedAt = time.Now()
	result := r.table(ctx, item.Kind).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"title":        item.Title,
		"slug":         item.Slug,
		"summary":      item.Summary,
		"body":         item.Body,
		"tags":         database.StringList(item.Tags),
		"published":    item.Published,
		"published_at": item.PublishedAt,
		"updated_at":   item.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}

// Delete removes an item.
func (r *GormContentRepository) Delete(ctx context.Context, kind domain.EntityKind, id string) error {
	result := r.table(ctx, kind).Where("id = ?", id).Delete(&domain.ContentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}

// IncrementViews bumps the view counter used by the "terpopuler" sort.
func (r *GormContentRepository) IncrementViews(ctx context.Context, kind domain.EntityKind, id string) error {
	return r.table(ctx, kind).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}
