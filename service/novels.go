package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/ctxutil"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/store"
	"github.com/kevinaaaquil/novels/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewNovel is the form submitted to create a novel.
type NewNovel struct {
	Title         string
	Author        string
	Description   string
	Genre         string
	PublishedDate string
	Tags          []string
}

// CoverUpload is an uploaded cover image.
type CoverUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var publishedDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

type Novels struct {
	novels  NovelStore
	covers  CoverStore
	linkage *Linkage
	catalog *Catalog
	now     func() time.Time
}

// NewNovels wires novel creation and reading. covers may be nil, in which
// case uploads with a cover are refused.
func NewNovels(novels NovelStore, covers CoverStore, linkage *Linkage, catalog *Catalog) *Novels {
	return &Novels{
		novels:  novels,
		covers:  covers,
		linkage: linkage,
		catalog: catalog,
		now:     time.Now,
	}
}

// Create stores a new novel and attaches it to the creator's novels.
func (s *Novels) Create(ctx context.Context, creator models.Principal, in NewNovel, cover *CoverUpload) (*models.Novel, error) {
	userID, err := primitive.ObjectIDFromHex(creator.ID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid principal")
	}

	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	v := &validate.Validator{}
	v.Required("title", title).Required("author", author)
	if err := v.Err("Title and author are required."); err != nil {
		return nil, err
	}

	now := s.now()
	published := now
	if raw := strings.TrimSpace(in.PublishedDate); raw != "" {
		published, err = parsePublishedDate(raw)
		if err != nil {
			return nil, apperr.ValidationError("Invalid published date.",
				apperr.FieldError{Field: "publishedDate", Message: "Must be a date (YYYY-MM-DD) or RFC 3339 timestamp"})
		}
	}

	genre := strings.TrimSpace(in.Genre)
	if genre == "" {
		genre = models.DefaultGenre
	}

	novel := &models.Novel{
		Title:         title,
		Author:        author,
		Description:   strings.TrimSpace(in.Description),
		Genre:         genre,
		Tags:          normalizeTags(in.Tags),
		PublishedDate: published,
		Chapters:      []models.Chapter{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var storedCover string
	if cover != nil {
		storedCover, err = s.storeCover(ctx, cover)
		if err != nil {
			return nil, err
		}
		novel.Cover = CoverURLPrefix + storedCover
	}

	id, err := s.novels.InsertNovel(ctx, novel)
	if err != nil {
		s.discardCover(ctx, storedCover)
		return nil, apperr.Internal(fmt.Errorf("insert novel: %w", err))
	}
	novel.ID = id
	// the novel is in the catalog from here on, even if Attach fails
	s.catalog.Invalidate(ctx)

	if err := s.linkage.Attach(ctx, userID, id); err != nil {
		return nil, err
	}

	ctxutil.Logger(ctx).Info("novel created",
		slog.String("novel_id", id.Hex()),
		slog.String("user_id", creator.ID),
	)
	return novel, nil
}

func (s *Novels) storeCover(ctx context.Context, cover *CoverUpload) (string, error) {
	if s.covers == nil {
		return "", apperr.ServiceUnavailable("cover upload not configured")
	}
	name, err := s.covers.Put(ctx, cover.Filename, cover.Body, cover.ContentType)
	if errors.Is(err, ErrUnsupportedCover) {
		return "", apperr.ValidationError(err.Error(), apperr.FieldError{Field: "cover", Message: err.Error()})
	}
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("store cover: %w", err))
	}
	return name, nil
}

func (s *Novels) discardCover(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.covers.Delete(ctx, name); err != nil {
		ctxutil.Logger(ctx).Warn("orphaned cover", slog.String("cover", name), slog.Any("error", err))
	}
}

// View returns a novel, counts the view and, for a signed-in reader, records
// it in their history. History failures do not fail the read.
func (s *Novels) View(ctx context.Context, rawID string, reader *models.Principal) (*models.Novel, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.NotFound("Novel")
	}
	err = s.novels.IncrementViews(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Novel")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("count view: %w", err))
	}
	novel, err := s.novels.NovelByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load novel: %w", err))
	}
	if novel == nil {
		return nil, apperr.NotFound("Novel")
	}

	if reader != nil {
		if readerID, err := primitive.ObjectIDFromHex(reader.ID); err == nil {
			if err := s.linkage.RecordView(ctx, readerID, id); err != nil {
				ctxutil.Logger(ctx).Warn("record view failed",
					slog.String("novel_id", id.Hex()),
					slog.Any("error", err),
				)
			}
		}
	}
	return novel, nil
}

// Cover opens a stored cover image.
func (s *Novels) Cover(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if s.covers == nil {
		return nil, "", apperr.NotFound("Cover")
	}
	body, contentType, err := s.covers.Open(ctx, name)
	if errors.Is(err, ErrCoverNotFound) {
		return nil, "", apperr.NotFound("Cover")
	}
	if err != nil {
		return nil, "", apperr.Internal(fmt.Errorf("open cover: %w", err))
	}
	if contentType == "" {
		contentType = CoverContentType(name)
	}
	return body, contentType, nil
}

func parsePublishedDate(raw string) (time.Time, error) {
	for _, layout := range publishedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// normalizeTags trims tags and drops empties and repeats, keeping first-seen
// order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
