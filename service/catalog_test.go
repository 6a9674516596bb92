package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/mock"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/service"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// seedNovels inserts novels whose createdAt increases with their index.
func seedNovels(t *testing.T, s *mock.Store, novels ...models.Novel) []models.Novel {
	t.Helper()
	out := make([]models.Novel, len(novels))
	for i, n := range novels {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = epoch.Add(time.Duration(i) * time.Minute)
		}
		if n.Genre == "" {
			n.Genre = models.DefaultGenre
		}
		id, err := s.InsertNovel(context.Background(), &n)
		require.NoError(t, err)
		n.ID = id
		out[i] = n
	}
	return out
}

func titles(novels []models.Novel) []string {
	out := make([]string, len(novels))
	for i, n := range novels {
		out[i] = n.Title
	}
	return out
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count int64
		limit int
		want  int
	}{
		{0, 6, 0},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{13, 6, 3},
		{100, 100, 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_by_%d", tt.count, tt.limit), func(t *testing.T) {
			assert.Equal(t, tt.want, service.TotalPages(tt.count, tt.limit))
		})
	}
}

func TestCatalogQuery_NewestFirst(t *testing.T) {
	s := mock.NewStore()
	seedNovels(t, s,
		models.Novel{Title: "First"},
		models.Novel{Title: "Second"},
		models.Novel{Title: "Third"},
	)
	c := service.NewCatalog(s, nil)

	page, err := c.Query(context.Background(), service.CatalogQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Second", "First"}, titles(page.Novels))
	assert.Equal(t, 1, page.TotalPages)
}

func TestCatalogQuery_PagesPartitionCatalog(t *testing.T) {
	s := mock.NewStore()
	var novels []models.Novel
	for i := 0; i < 13; i++ {
		novels = append(novels, models.Novel{Title: fmt.Sprintf("Novel %02d", i)})
	}
	seeded := seedNovels(t, s, novels...)
	c := service.NewCatalog(s, nil)
	ctx := context.Background()

	first, err := c.Query(ctx, service.CatalogQuery{Page: 1, Limit: 6})
	require.NoError(t, err)
	require.Equal(t, 3, first.TotalPages)

	seen := make(map[string]int)
	for p := 1; p <= first.TotalPages; p++ {
		page, err := c.Query(ctx, service.CatalogQuery{Page: p, Limit: 6})
		require.NoError(t, err)
		if p < first.TotalPages {
			assert.Len(t, page.Novels, 6)
		} else {
			assert.Len(t, page.Novels, 1)
		}
		for _, n := range page.Novels {
			seen[n.ID.Hex()]++
		}
	}
	require.Len(t, seen, len(seeded))
	for _, n := range seeded {
		assert.Equal(t, 1, seen[n.ID.Hex()], n.Title)
	}
}

func TestCatalogQuery_TiesBrokenByID(t *testing.T) {
	s := mock.NewStore()
	same := epoch.Add(time.Hour)
	seeded := seedNovels(t, s,
		models.Novel{Title: "A", CreatedAt: same},
		models.Novel{Title: "B", CreatedAt: same},
		models.Novel{Title: "C", CreatedAt: same},
	)
	c := service.NewCatalog(s, nil)
	ctx := context.Background()

	var ids []string
	for p := 1; p <= 3; p++ {
		page, err := c.Query(ctx, service.CatalogQuery{Page: p, Limit: 1})
		require.NoError(t, err)
		require.Len(t, page.Novels, 1)
		ids = append(ids, page.Novels[0].ID.Hex())
	}
	// ObjectIDs minted later sort higher, so descending id is reverse insert order.
	assert.Equal(t, []string{seeded[2].ID.Hex(), seeded[1].ID.Hex(), seeded[0].ID.Hex()}, ids)
}

func TestCatalogQuery_Filters(t *testing.T) {
	s := mock.NewStore()
	seedNovels(t, s,
		models.Novel{Title: "Dragon Tales", Genre: "Fantasy"},
		models.Novel{Title: "The Last DRAGON", Genre: "Fantasy"},
		models.Novel{Title: "Dune", Genre: "SciFi"},
		models.Novel{Title: "Dragonfly", Genre: "SciFi"},
	)
	c := service.NewCatalog(s, nil)

	tests := []struct {
		name  string
		query service.CatalogQuery
		want  []string
	}{
		{"all_is_noop", service.CatalogQuery{Genre: "All"}, []string{"Dragonfly", "Dune", "The Last DRAGON", "Dragon Tales"}},
		{"empty_genre_is_noop", service.CatalogQuery{Genre: ""}, []string{"Dragonfly", "Dune", "The Last DRAGON", "Dragon Tales"}},
		{"genre_exact", service.CatalogQuery{Genre: "SciFi"}, []string{"Dragonfly", "Dune"}},
		{"genre_is_case_sensitive", service.CatalogQuery{Genre: "scifi"}, []string{}},
		{"search_case_insensitive", service.CatalogQuery{Search: "dragon"}, []string{"Dragonfly", "The Last DRAGON", "Dragon Tales"}},
		{"search_and_genre", service.CatalogQuery{Search: "dragon", Genre: "Fantasy"}, []string{"The Last DRAGON", "Dragon Tales"}},
		{"search_trimmed", service.CatalogQuery{Search: "  dune "}, []string{"Dune"}},
		{"search_is_literal", service.CatalogQuery{Search: "dr.gon"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := c.Query(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(page.Novels))
		})
	}
}

func TestCatalogQuery_Defaults(t *testing.T) {
	s := mock.NewStore()
	var novels []models.Novel
	for i := 0; i < 8; i++ {
		novels = append(novels, models.Novel{Title: fmt.Sprintf("N%d", i)})
	}
	seedNovels(t, s, novels...)
	c := service.NewCatalog(s, nil)

	page, err := c.Query(context.Background(), service.CatalogQuery{Page: -3, Limit: 0})
	require.NoError(t, err)
	assert.Len(t, page.Novels, service.DefaultLimit)
	assert.Equal(t, 2, page.TotalPages)

	page, err = c.Query(context.Background(), service.CatalogQuery{Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, page.Novels, 8)
	assert.Equal(t, 1, page.TotalPages)
}

func TestCatalogQuery_PageOutOfRange(t *testing.T) {
	s := mock.NewStore()
	seedNovels(t, s, models.Novel{Title: "Only"})
	c := service.NewCatalog(s, nil)

	page, err := c.Query(context.Background(), service.CatalogQuery{Page: 9, Limit: 6})
	require.NoError(t, err)
	assert.NotNil(t, page.Novels)
	assert.Empty(t, page.Novels)
	assert.Equal(t, 1, page.TotalPages)
}

func TestCatalogQuery_EmptyCatalog(t *testing.T) {
	c := service.NewCatalog(mock.NewStore(), nil)

	page, err := c.Query(context.Background(), service.CatalogQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Novels)
	assert.Empty(t, page.Novels)
	assert.Equal(t, 0, page.TotalPages)
}

func TestCatalogQuery_StoreFault(t *testing.T) {
	s := mock.NewStore()
	s.SetErr(errors.New("connection reset"))
	c := service.NewCatalog(s, nil)

	_, err := c.Query(context.Background(), service.CatalogQuery{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "INTERNAL_ERROR"))
	assert.NotContains(t, apperr.As(err).Message, "connection reset")
}

func TestCatalogQuery_Cache(t *testing.T) {
	s := mock.NewStore()
	seedNovels(t, s, models.Novel{Title: "Cached"})
	cache := mock.NewCache()
	c := service.NewCatalog(s, cache)
	ctx := context.Background()

	first, err := c.Query(ctx, service.CatalogQuery{Search: "cached"})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Hits)

	// a store fault is invisible while the page is cached
	s.SetErr(errors.New("down"))
	second, err := c.Query(ctx, service.CatalogQuery{Search: "CACHED"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits)
	assert.Equal(t, first, second)

	c.Invalidate(ctx)
	assert.Equal(t, 1, cache.Invalidations)
	_, err = c.Query(ctx, service.CatalogQuery{Search: "cached"})
	assert.Error(t, err)
}

// createAfterRead simulates a novel being created after a catalog query has
// read the store but before it stores the page in the cache.
type createAfterRead struct {
	*mock.Store
	t     *testing.T
	cache *mock.Cache
	fired bool
}

func (s *createAfterRead) FindNovels(ctx context.Context, f models.CatalogFilter, skip, limit int64) ([]models.Novel, error) {
	novels, err := s.Store.FindNovels(ctx, f, skip, limit)
	if !s.fired {
		s.fired = true
		seedNovels(s.t, s.Store, models.Novel{Title: "Late", CreatedAt: epoch.Add(time.Hour)})
		require.NoError(s.t, s.cache.Invalidate(ctx))
	}
	return novels, err
}

func TestCatalogQuery_InvalidateDuringQueryIsNotMasked(t *testing.T) {
	s := mock.NewStore()
	seedNovels(t, s, models.Novel{Title: "Early"})
	cache := mock.NewCache()
	c := service.NewCatalog(&createAfterRead{Store: s, t: t, cache: cache}, cache)
	ctx := context.Background()

	first, err := c.Query(ctx, service.CatalogQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Early"}, titles(first.Novels))

	second, err := c.Query(ctx, service.CatalogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Hits)
	assert.Equal(t, []string{"Late", "Early"}, titles(second.Novels))

	_, err = c.Query(ctx, service.CatalogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits)
}

func TestCatalogInvalidate_NilCache(t *testing.T) {
	var c *service.Catalog
	assert.NotPanics(t, func() { c.Invalidate(context.Background()) })
	assert.NotPanics(t, func() { service.NewCatalog(mock.NewStore(), nil).Invalidate(context.Background()) })
}
