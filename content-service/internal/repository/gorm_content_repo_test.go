package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

func seed(t *testing.T, repo *GormContentRepository, kind domain.EntityKind, title string, published bool, views int) *domain.Item {
	t.Helper()
	item := &domain.Item{Kind: kind, Title: title, Published: published}
	require.NoError(t, repo.Create(context.Background(), item))
	for i := 0; i < views; i++ {
		require.NoError(t, repo.IncrementViews(context.Background(), kind, item.ID))
	}
	return item
}

func TestGormContentRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewGormContentRepository(newTestDB(t))

	item := &domain.Item{Kind: domain.KindBerita, Title: "Festival Budaya Kota 2026", Published: true, Tags: []string{"budaya"}}
	require.NoError(t, repo.Create(ctx, item))

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "festival-budaya-kota-2026", item.Slug)
	assert.NotNil(t, item.PublishedAt)
	assert.False(t, item.CreatedAt.IsZero())

	got, err := repo.GetBySlug(ctx, domain.KindBerita, item.Slug)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, domain.KindBerita, got.Kind)
	assert.Equal(t, []string{"budaya"}, got.Tags)

	t.Run("duplicate slug in same kind", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Item{Kind: domain.KindBerita, Title: "Festival Budaya Kota 2026"})
		assert.ErrorIs(t, err, ErrDuplicateSlug)
	})

	t.Run("same slug in another kind", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Item{Kind: domain.KindArtikel, Title: "Festival Budaya Kota 2026"})
		assert.NoError(t, err)
	})

	t.Run("retry after committed insert", func(t *testing.T) {
		again := *item
		again.CreatedAt = time.Time{}
		require.NoError(t, repo.Create(ctx, &again))
		assert.Equal(t, item.CreatedAt.Unix(), again.CreatedAt.Unix())

		n, err := repo.Count(ctx, domain.KindBerita, false)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("kinds are separate tables", func(t *testing.T) {
		_, err := repo.GetByID(ctx, domain.KindLayanan, item.ID)
		assert.ErrorIs(t, err, ErrContentNotFound)
	})
}

func TestGormContentRepository_GetAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormContentRepository(newTestDB(t))

	seed(t, repo, domain.KindBerita, "Pembangunan Jalan Protokol", true, 1)
	time.Sleep(5 * time.Millisecond)
	seed(t, repo, domain.KindBerita, "Jadwal Pelayanan Pajak", true, 5)
	time.Sleep(5 * time.Millisecond)
	seed(t, repo, domain.KindBerita, "Agenda Rapat Pajak Daerah", false, 0)
	time.Sleep(5 * time.Millisecond)
	seed(t, repo, domain.KindBerita, "Bazar UMKM Akhir Pekan", true, 2)

	titles := func(r *domain.ListResult) []string {
		out := make([]string, len(r.Data))
		for i, it := range r.Data {
			out[i] = it.Title
		}
		return out
	}

	t.Run("case-insensitive substring on title", func(t *testing.T) {
		r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{Search: "PAJAK", Limit: 10})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Jadwal Pelayanan Pajak", "Agenda Rapat Pajak Daerah"}, titles(r))
	})

	t.Run("published only", func(t *testing.T) {
		r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{Search: "pajak", PublishedOnly: true, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"Jadwal Pelayanan Pajak"}, titles(r))
		assert.Equal(t, 1, r.Total)
		assert.Equal(t, 1, r.TotalPages)
	})

	t.Run("terms are alternates", func(t *testing.T) {
		r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{Search: "jalan", Terms: []string{"umkm"}, Limit: 10})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Pembangunan Jalan Protokol", "Bazar UMKM Akhir Pekan"}, titles(r))
	})

	t.Run("sort newest by default", func(t *testing.T) {
		r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{PublishedOnly: true, Limit: 10, SortBy: "unknown"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bazar UMKM Akhir Pekan", "Jadwal Pelayanan Pajak", "Pembangunan Jalan Protokol"}, titles(r))
	})

	t.Run("sort popular", func(t *testing.T) {
		r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{PublishedOnly: true, Limit: 10, SortBy: domain.SortPopular})
		require.NoError(t, err)
		assert.Equal(t, "Jadwal Pelayanan Pajak", r.Data[0].Title)
		assert.Equal(t, 5, r.Data[0].ViewCount)
	})

	t.Run("sort title", func(t *testing.T) {
		r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{PublishedOnly: true, Limit: 10, SortBy: domain.SortTitle})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bazar UMKM Akhir Pekan", "Jadwal Pelayanan Pajak", "Pembangunan Jalan Protokol"}, titles(r))
	})

	t.Run("paging", func(t *testing.T) {
		r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.Len(t, r.Data, 1)
		assert.Equal(t, 4, r.Total)
		assert.Equal(t, 2, r.TotalPages)
	})

	t.Run("count", func(t *testing.T) {
		n, err := repo.Count(ctx, domain.KindBerita, true)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		n, err = repo.Count(ctx, domain.KindBerita, false)
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)

		n, err = repo.Count(ctx, domain.KindLayanan, false)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestGormContentRepository_GetAllLiteralPatternChars(t *testing.T) {
	ctx := context.Background()
	repo := NewGormContentRepository(newTestDB(t))

	seed(t, repo, domain.KindBerita, "Diskon Pajak 50 persen", true, 0)
	seed(t, repo, domain.KindBerita, "Jadwal Posyandu", true, 0)
	seed(t, repo, domain.KindBerita, "Potongan 50% Retribusi Pasar", true, 0)
	seed(t, repo, domain.KindBerita, "Unggah berkas_izin sebelum Jumat", true, 0)

	tests := []struct {
		search string
		want   []string
	}{
		{"%", []string{"Potongan 50% Retribusi Pasar"}},
		{"50%", []string{"Potongan 50% Retribusi Pasar"}},
		{"_", []string{"Unggah berkas_izin sebelum Jumat"}},
		{"n_p", nil},
		{"!", nil},
		{"50", []string{"Diskon Pajak 50 persen", "Potongan 50% Retribusi Pasar"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			r, err := repo.GetAll(ctx, domain.KindBerita, domain.ListOptions{Search: tt.search, Limit: 10})
			require.NoError(t, err)

			var got []string
			for _, it := range r.Data {
				got = append(got, it.Title)
			}
			assert.ElementsMatch(t, tt.want, got)
			assert.Equal(t, len(tt.want), r.Total)
		})
	}
}

func TestGormContentRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormContentRepository(newTestDB(t))

	item := seed(t, repo, domain.KindLayanan, "Pembuatan KTP", false, 0)
	other := seed(t, repo, domain.KindLayanan, "Pembuatan KK", false, 0)

	item.Title = "Pembuatan KTP Elektronik"
	item.Published = true
	require.NoError(t, repo.Update(ctx, item))
	assert.NotNil(t, item.PublishedAt)

	got, err := repo.GetByID(ctx, domain.KindLayanan, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pembuatan KTP Elektronik", got.Title)
	assert.True(t, got.Published)

	t.Run("slug collision", func(t *testing.T) {
		clash := *item
		clash.Slug = other.Slug
		assert.ErrorIs(t, repo.Update(ctx, &clash), ErrDuplicateSlug)
	})

	t.Run("update missing", func(t *testing.T) {
		missing := &domain.Item{ID: "nope", Kind: domain.KindLayanan, Title: "x", Slug: fmt.Sprintf("x-%d", time.Now().UnixNano())}
		assert.ErrorIs(t, repo.Update(ctx, missing), ErrContentNotFound)
	})

	require.NoError(t, repo.Delete(ctx, domain.KindLayanan, item.ID))
	_, err = repo.GetByID(ctx, domain.KindLayanan, item.ID)
	assert.ErrorIs(t, err, ErrContentNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, domain.KindLayanan, item.ID), ErrContentNotFound)
}
