package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactMessage records a message sent through the contact form.
type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Message   string             `bson:"message" json:"message"`
	Mailed    bool               `bson:"mailed" json:"mailed"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
