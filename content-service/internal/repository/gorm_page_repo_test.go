package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

func TestGormPageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPageRepository(newTestDB(t))

	_, err := repo.GetBySlug(ctx, "profil")
	assert.ErrorIs(t, err, ErrPageNotFound)

	require.NoError(t, repo.Upsert(ctx, &domain.Page{Slug: "profil", Title: "Profil Kota", Body: "v1", UpdatedBy: "u-1"}))
	require.NoError(t, repo.Upsert(ctx, &domain.Page{Slug: "kontak", Title: "Kontak", Body: "telp"}))
	require.NoError(t, repo.Upsert(ctx, &domain.Page{Slug: "profil", Title: "Profil Kota", Body: "v2", UpdatedBy: "u-2"}))

	got, err := repo.GetBySlug(ctx, "profil")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Body)
	assert.Equal(t, "u-2", got.UpdatedBy)

	pages, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "kontak", pages[0].Slug)

	require.NoError(t, repo.Delete(ctx, "kontak"))
	assert.ErrorIs(t, repo.Delete(ctx, "kontak"), ErrPageNotFound)
}
