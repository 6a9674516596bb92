package store

import (
	"context"

	"github.com/kevinaaaquil/novels/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertContactMessage(ctx context.Context, msg *models.ContactMessage) (primitive.ObjectID, error) {
	res, err := db.ContactMessages().InsertOne(ctx, msg, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// MarkContactMessageMailed records that the message reached the inbox.
func (db *DB) MarkContactMessageMailed(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.ContactMessages().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"mailed": true}})
	return err
}
