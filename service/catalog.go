package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/ctxutil"
	"github.com/kevinaaaquil/novels/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 6
	MaxLimit     = 100
)

// CatalogQuery is a page request against the catalog. Zero Page and Limit
// fall back to the defaults.
type CatalogQuery struct {
	Search string
	Genre  string
	Page   int
	Limit  int
}

func (q CatalogQuery) normalize() CatalogQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Genre = strings.TrimSpace(q.Genre)
	if q.Genre == "" {
		q.Genre = models.AllGenres
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

func (q CatalogQuery) cacheKey() string {
	v := url.Values{}
	v.Set("search", strings.ToLower(q.Search))
	v.Set("genre", q.Genre)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return v.Encode()
}

// EmptyPage is what the catalog serves when the store cannot be read.
func EmptyPage() *models.CatalogPage {
	return &models.CatalogPage{Novels: []models.Novel{}, TotalPages: 1}
}

// TotalPages is ceil(count/limit).
func TotalPages(count int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	l := int64(limit)
	return int((count + l - 1) / l)
}

type Catalog struct {
	novels NovelStore
	cache  CatalogCache
}

// NewCatalog returns a catalog reading from novels. cache may be nil.
func NewCatalog(novels NovelStore, cache CatalogCache) *Catalog {
	return &Catalog{novels: novels, cache: cache}
}

// Query returns one page of novels matching q, newest first. It is
// read-only. Store faults come back as an internal AppError; cache faults are
// logged and bypassed.
func (c *Catalog) Query(ctx context.Context, q CatalogQuery) (*models.CatalogPage, error) {
	q = q.normalize()
	log := ctxutil.Logger(ctx)

	var slot string
	if c.cache != nil {
		cached, missSlot, err := c.cache.Get(ctx, q.cacheKey())
		if err != nil {
			log.Warn("catalog cache get failed", slog.Any("error", err))
		} else if cached != nil {
			return cached, nil
		}
		slot = missSlot
	}

	page, err := c.query(ctx, q)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("catalog query: %w", err))
	}

	if slot != "" {
		if err := c.cache.Set(ctx, slot, page); err != nil {
			log.Warn("catalog cache set failed", slog.Any("error", err))
		}
	}
	return page, nil
}

func (c *Catalog) query(ctx context.Context, q CatalogQuery) (*models.CatalogPage, error) {
	filter := models.CatalogFilter{Search: q.Search, Genre: q.Genre}

	total, err := c.novels.CountNovels(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := &models.CatalogPage{
		Novels:     []models.Novel{},
		TotalPages: TotalPages(total, q.Limit),
	}

	skip := int64(q.Page-1) * int64(q.Limit)
	if skip >= total {
		return page, nil
	}
	novels, err := c.novels.FindNovels(ctx, filter, skip, int64(q.Limit))
	if err != nil {
		return nil, err
	}
	if novels != nil {
		page.Novels = novels
	}
	return page, nil
}

// Invalidate drops cached pages after the catalog changed.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c == nil || c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx); err != nil {
		ctxutil.Logger(ctx).Warn("catalog cache invalidate failed", slog.Any("error", err))
	}
}
