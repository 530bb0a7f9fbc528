package models

import (
	"encoding/json"
	"time"
)

// Websocket event names, shared by both directions.
const (
	EventJoinRoom        = "join-room"
	EventChatMessage     = "chat-message"
	EventMessageUpdate   = "message-update"
	EventMessageReaction = "message-reaction"
	EventMessageDelete   = "message-delete"
)

// Reaction actions.
const (
	ReactionAdd    = "add"
	ReactionRemove = "remove"
)

// Envelope is the tagged frame exchanged over the websocket. Inbound payloads
// stay raw until the event name selects a schema.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutboundEvent mirrors Envelope for emission.
type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// JoinRoomPayload subscribes the connection to a room.
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

// ChatMessagePayload carries a new message from a joined connection.
type ChatMessagePayload struct {
	Content    string    `json:"content"`
	Username   string    `json:"username"`
	Type       string    `json:"type,omitempty"`
	ProfilePic string    `json:"profilePic,omitempty"`
	ReplyTo    *ReplyRef `json:"replyTo,omitempty"`
}

// MessageUpdatePayload edits an existing message.
type MessageUpdatePayload struct {
	NewContent string `json:"newContent"`
	MessageID  string `json:"messageId"`
	RoomCode   string `json:"roomCode"`
}

// MessageReactionPayload adds or removes an emoji reaction.
type MessageReactionPayload struct {
	MessageID      string    `json:"messageId"`
	RoomCode       string    `json:"roomCode"`
	Emoji          string    `json:"emoji"`
	SenderUsername string    `json:"senderUsername"`
	Action         string    `json:"action"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
}

// ServerNotice is sent on the chat-message event for welcome, join/leave and
// error notices.
type ServerNotice struct {
	ServerMsg string `json:"serverMsg"`
}

// MessageUpdateEvent confirms an applied edit to the room.
type MessageUpdateEvent struct {
	MessageID  string    `json:"messageId"`
	NewContent string    `json:"newContent"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MessageReactionEvent confirms an applied reaction change to the room.
type MessageReactionEvent struct {
	MessageID      string    `json:"messageId"`
	Emoji          string    `json:"emoji"`
	SenderUsername string    `json:"senderUsername"`
	SenderID       string    `json:"senderId"`
	Action         string    `json:"action"`
	Timestamp      time.Time `json:"timestamp"`
}

// MessageDeleteEvent notifies the room that a message was removed.
type MessageDeleteEvent struct {
	MessageID string `json:"messageId"`
}
