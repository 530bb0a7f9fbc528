package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"room-chat-service/internal/models"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomRepository abstracts room and message persistence. Every mutation is a
// single-document atomic update scoped by (roomCode, messageId) and reports
// whether the store matched a target, so callers can tell "no such
// room/message" apart from an applied write.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room models.Room) (models.Room, error)
	GetRoom(ctx context.Context, code string) (models.Room, error)
	FetchHistory(ctx context.Context, code string) ([]models.Message, error)
	AppendMessage(ctx context.Context, code string, msg models.Message) error
	UpdateMessageContent(ctx context.Context, code string, messageID primitive.ObjectID, newContent string, now time.Time) (bool, error)
	AddReaction(ctx context.Context, code string, messageID primitive.ObjectID, reaction models.Reaction) (bool, error)
	RemoveReaction(ctx context.Context, code string, messageID primitive.ObjectID, emoji, senderUsername string) (bool, error)
	DeleteMessage(ctx context.Context, code string, messageID primitive.ObjectID) (bool, error)
}

// RoomRepo is a mongo-backed RoomRepository.
type RoomRepo struct {
	col *mongo.Collection
}

// NewRoomRepo constructs a RoomRepo over the rooms collection.
func NewRoomRepo(db *mongo.Database) *RoomRepo {
	return &RoomRepo{col: db.Collection("rooms")}
}

// CreateRoom creates a room keyed by code. Creation is idempotent-by-upsert:
// a second create for the same code leaves the existing document untouched.
func (r *RoomRepo) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	if room.Members == nil {
		room.Members = []models.Member{}
	}
	if room.Messages == nil {
		room.Messages = []models.Message{}
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	_, err := r.col.UpdateOne(ctx,
		bson.M{"code": room.Code},
		bson.M{"$setOnInsert": room},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.Room{}, err
	}
	return r.GetRoom(ctx, room.Code)
}

// GetRoom fetches a room by code.
func (r *RoomRepo) GetRoom(ctx context.Context, code string) (models.Room, error) {
	var room models.Room
	err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// FetchHistory returns the room's message log in insertion order, creating
// the room empty if it does not exist yet.
func (r *RoomRepo) FetchHistory(ctx context.Context, code string) ([]models.Message, error) {
	var room models.Room
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"code": code},
		bson.M{"$setOnInsert": bson.M{
			"members":   []models.Member{},
			"messages":  []models.Message{},
			"createdAt": time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&room)
	if err != nil {
		return nil, err
	}
	if room.Messages == nil {
		return []models.Message{}, nil
	}
	return room.Messages, nil
}

// AppendMessage pushes a message onto the room's log, creating the room on
// first write.
func (r *RoomRepo) AppendMessage(ctx context.Context, code string, msg models.Message) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"code": code},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$setOnInsert": bson.M{
				"members":   []models.Member{},
				"createdAt": time.Now().UTC(),
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// UpdateMessageContent sets content and updatedAt on the embedded message.
// Returns false when no (room, message) pair matched.
func (r *RoomRepo) UpdateMessageContent(ctx context.Context, code string, messageID primitive.ObjectID, newContent string, now time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"code": code, "messages._id": messageID},
		bson.M{"$set": bson.M{
			"messages.$.content":   newContent,
			"messages.$.updatedAt": now,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// AddReaction inserts the reaction, replacing any existing entry with the
// same (emoji, senderUsername). The filter-and-append runs as one pipeline
// update, so concurrent adds for the same pair cannot produce duplicates.
func (r *RoomRepo) AddReaction(ctx context.Context, code string, messageID primitive.ObjectID, reaction models.Reaction) (bool, error) {
	keepOthers := bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$$m.reactions", bson.A{}}},
		"as":    "r",
		"cond": bson.M{"$or": bson.A{
			bson.M{"$ne": bson.A{"$$r.emoji", reaction.Emoji}},
			bson.M{"$ne": bson.A{"$$r.senderUsername", reaction.SenderUsername}},
		}},
	}}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"messages": bson.M{"$map": bson.M{
				"input": "$messages",
				"as":    "m",
				"in": bson.M{"$cond": bson.A{
					bson.M{"$ne": bson.A{"$$m._id", messageID}},
					"$$m",
					bson.M{"$mergeObjects": bson.A{"$$m", bson.M{
						"reactions": bson.M{"$concatArrays": bson.A{keepOthers, bson.A{reaction}}},
					}}},
				}},
			}},
		}}},
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"code": code, "messages._id": messageID},
		pipeline,
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RemoveReaction pulls the (emoji, senderUsername) entry from the message.
// Returns false when nothing was removed.
func (r *RoomRepo) RemoveReaction(ctx context.Context, code string, messageID primitive.ObjectID, emoji, senderUsername string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"code": code, "messages._id": messageID},
		bson.M{"$pull": bson.M{"messages.$.reactions": bson.M{
			"emoji":          emoji,
			"senderUsername": senderUsername,
		}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// DeleteMessage removes the message from the room's log.
func (r *RoomRepo) DeleteMessage(ctx context.Context, code string, messageID primitive.ObjectID) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"code": code, "messages._id": messageID},
		bson.M{"$pull": bson.M{"messages": bson.M{"_id": messageID}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
