package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is embedded in its Room document. Insertion order is display order.
type Message struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	SenderID   string             `bson:"senderId" json:"senderId"`
	Username   string             `bson:"username" json:"username"`
	ProfilePic string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	Content    string             `bson:"content" json:"content"`
	Type       string             `bson:"type" json:"type"`
	ReplyTo    *ReplyRef          `bson:"replyTo,omitempty" json:"replyTo,omitempty"`
	Reactions  []Reaction         `bson:"reactions" json:"reactions"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReplyRef is a content snapshot of the referenced message taken at send time.
// It is not a live link: editing the original leaves the snapshot stale.
type ReplyRef struct {
	MessageID string `bson:"messageId" json:"messageId"`
	Content   string `bson:"content" json:"content"`
}

// Reaction records one emoji reaction. A message holds at most one reaction
// per (emoji, senderUsername) pair.
type Reaction struct {
	Emoji          string    `bson:"emoji" json:"emoji"`
	SenderUsername string    `bson:"senderUsername" json:"senderUsername"`
	SenderID       string    `bson:"senderId" json:"senderId"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}
