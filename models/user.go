package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProviderCredentials tags accounts created through email/password signup.
const ProviderCredentials = "credentials"

// NovelRef is a weak reference to a novel. The target may have been deleted.
type NovelRef struct {
	ID string `bson:"id" json:"id"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"` // unique, lower-cased
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Password  string             `bson:"password,omitempty" json:"-"` // bcrypt hash
	Provider  string             `bson:"provider" json:"provider"`
	Novels    []NovelRef         `bson:"novels" json:"novels"`
	History   []NovelRef         `bson:"history" json:"history"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Principal is the minimal authenticated identity handed to the session layer.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
