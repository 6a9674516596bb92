package store

import (
	"context"
	"regexp"

	"github.com/kevinaaaquil/novels/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// catalogSort orders newest first; _id breaks createdAt ties.
var catalogSort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (db *DB) InsertNovel(ctx context.Context, novel *models.Novel) (primitive.ObjectID, error) {
	if novel.Tags == nil {
		novel.Tags = []string{}
	}
	if novel.Chapters == nil {
		novel.Chapters = []models.Chapter{}
	}
	res, err := db.Novels().InsertOne(ctx, novel, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// NovelByID returns nil, nil when the novel does not exist.
func (db *DB) NovelByID(ctx context.Context, id primitive.ObjectID) (*models.Novel, error) {
	var novel models.Novel
	err := db.Novels().FindOne(ctx, bson.M{"_id": id}).Decode(&novel)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &novel, nil
}

// NovelsByIDs returns the novels that still exist among ids, in no particular
// order.
func (db *DB) NovelsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Novel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := db.Novels().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var novels []models.Novel
	if err := cur.All(ctx, &novels); err != nil {
		return nil, err
	}
	return novels, nil
}

func (db *DB) CountNovels(ctx context.Context, f models.CatalogFilter) (int64, error) {
	return db.Novels().CountDocuments(ctx, catalogFilter(f))
}

// FindNovels returns the window [skip, skip+limit) of the novels matching f,
// newest first.
func (db *DB) FindNovels(ctx context.Context, f models.CatalogFilter, skip, limit int64) ([]models.Novel, error) {
	opts := options.Find().SetSort(catalogSort).SetSkip(skip).SetLimit(limit)
	cur, err := db.Novels().Find(ctx, catalogFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var novels []models.Novel
	if err := cur.All(ctx, &novels); err != nil {
		return nil, err
	}
	return novels, nil
}

// IncrementViews bumps the view counter and returns ErrNotFound for an
// unknown novel.
func (db *DB) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.Novels().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// catalogFilter matches titles containing Search, case-insensitively, and the
// exact genre unless the filter is "All".
func catalogFilter(f models.CatalogFilter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	if f.FiltersGenre() {
		filter["genre"] = f.Genre
	}
	return filter
}
