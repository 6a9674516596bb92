package store

import (
	"context"
	"time"

	"github.com/kevinaaaquil/novels/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserByEmail returns nil, nil when no user has the email. The email must
// already be normalized.
func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts the user and returns ErrDuplicate if the email is taken.
func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	if user.Novels == nil {
		user.Novels = []models.NovelRef{}
	}
	if user.History == nil {
		user.History = []models.NovelRef{}
	}
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrDuplicate
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// PushNovelRef appends ref to the user's novels with a single $push so
// concurrent appends for the same user never overwrite each other.
func (db *DB) PushNovelRef(ctx context.Context, userID primitive.ObjectID, ref models.NovelRef) error {
	return db.pushRef(ctx, userID, "novels", ref)
}

// PushHistoryRef appends ref to the user's reading history.
func (db *DB) PushHistoryRef(ctx context.Context, userID primitive.ObjectID, ref models.NovelRef) error {
	return db.pushRef(ctx, userID, "history", ref)
}

func (db *DB) pushRef(ctx context.Context, userID primitive.ObjectID, field string, ref models.NovelRef) error {
	res, err := db.Users().UpdateOne(ctx, bson.M{"_id": userID}, pushRefUpdate(field, ref, time.Now()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func pushRefUpdate(field string, ref models.NovelRef, now time.Time) bson.M {
	return bson.M{
		"$push": bson.M{field: ref},
		"$set":  bson.M{"updatedAt": now},
	}
}
