package telemetry

import (
	"context"
	"time"

	"room-chat-service/internal/observability"
)

// Room lifecycle audit event names.
const (
	EventRoomJoined     = "room_joined"
	EventRoomLeft       = "room_left"
	EventMessageSent    = "message_sent"
	EventMessageEdited  = "message_edited"
	EventMessageDeleted = "message_deleted"
)

// AuditEnvelope is the schema published for room activity.
type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// AuditPayload identifies the room activity being recorded.
type AuditPayload struct {
	Event     string `json:"event"`
	RoomCode  string `json:"room_code"`
	Username  string `json:"username,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	ConnID    string `json:"conn_id,omitempty"`
}

// AuditEmitter publishes room activity to the event bus. A nil emitter is a
// valid no-op.
type AuditEmitter struct {
	routingKey  string
	service     string
	environment string
}

// NewAuditEmitter constructs an AuditEmitter.
func NewAuditEmitter(routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one room activity event. Publish failures are counted by the
// observability layer and never affect the caller.
func (e *AuditEmitter) Emit(ctx context.Context, payload AuditPayload, requestID, traceID string) {
	if e == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "room_activity",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		Payload:       payload,
	}

	_ = observability.PublishEvent(ctx, e.routingKey, envelope, observability.BuildHeaders(requestID, traceID))
}
