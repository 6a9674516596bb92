package service

import (
	"context"
	"io"

	"github.com/kevinaaaquil/novels/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NovelStore is the part of the record store the novel services use.
// *store.DB implements it.
type NovelStore interface {
	InsertNovel(ctx context.Context, novel *models.Novel) (primitive.ObjectID, error)
	NovelByID(ctx context.Context, id primitive.ObjectID) (*models.Novel, error)
	NovelsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Novel, error)
	CountNovels(ctx context.Context, f models.CatalogFilter) (int64, error)
	FindNovels(ctx context.Context, f models.CatalogFilter, skip, limit int64) ([]models.Novel, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
}

// UserStore is the part of the record store the account services use.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	PushNovelRef(ctx context.Context, userID primitive.ObjectID, ref models.NovelRef) error
	PushHistoryRef(ctx context.Context, userID primitive.ObjectID, ref models.NovelRef) error
}

type ContactStore interface {
	InsertContactMessage(ctx context.Context, msg *models.ContactMessage) (primitive.ObjectID, error)
	MarkContactMessageMailed(ctx context.Context, id primitive.ObjectID) error
}

// CatalogCache stores catalog pages. On a miss Get returns a nil page and the
// slot to pass to Set; a slot from before an Invalidate is never read again.
type CatalogCache interface {
	Get(ctx context.Context, key string) (*models.CatalogPage, string, error)
	Set(ctx context.Context, slot string, page *models.CatalogPage) error
	Invalidate(ctx context.Context) error
}

// CoverStore keeps cover images under generated names.
type CoverStore interface {
	Put(ctx context.Context, filename string, body io.Reader, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, name string) error
}
