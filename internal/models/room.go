package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room is a code-addressed chat channel with an embedded ordered message log.
// The code, not the storage id, is the lookup key and is unique across rooms.
type Room struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Code        string             `bson:"code" json:"code"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Members     []Member           `bson:"members" json:"members"`
	Messages    []Message          `bson:"messages" json:"messages"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Member is a denormalized participant summary. Advisory only, it is not
// consulted for access control.
type Member struct {
	UserID     string `bson:"userId" json:"userId"`
	Username   string `bson:"username" json:"username"`
	ProfilePic string `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
}
