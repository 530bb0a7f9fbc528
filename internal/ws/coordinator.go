package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/session"
	"room-chat-service/internal/telemetry"
)

const persistTimeout = 5 * time.Second

const wsRoutingKey = "ws_events.rooms"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Coordinator drives all room-scoped real-time interactions. It is stateless
// between events: session state lives in the registry, message state in the
// store. Events from one connection run sequentially on that connection's
// read loop; events from different connections interleave freely at store
// round-trips.
type Coordinator struct {
	hub      *Hub
	sessions *session.Registry
	rooms    repositories.RoomRepository
	audit    *telemetry.AuditEmitter
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(hub *Hub, sessions *session.Registry, rooms repositories.RoomRepository, audit *telemetry.AuditEmitter) *Coordinator {
	return &Coordinator{hub: hub, sessions: sessions, rooms: rooms, audit: audit}
}

// Handle upgrades the connection and starts its read loop.
func (c *Coordinator) Handle(g *gin.Context) {
	ctx, span := otel.Tracer("room-chat-service/ws").Start(g.Request.Context(), "ws.handshake")
	defer span.End()

	conn, err := upgrader.Upgrade(g.Writer, g.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		IP:          observability.IPFromRequest(g.Request),
		RequestID:   observability.RequestIDFromRequest(g.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	c.publishWS(ctx, "ws_connect", info, "")

	// The request context is canceled when this handler returns; the read
	// loop outlives it but keeps the trace and request values.
	go c.readLoop(context.WithoutCancel(ctx), conn, info)
}

func (c *Coordinator) readLoop(ctx context.Context, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		c.Disconnect(ctx, conn, info)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		c.publishWS(ctx, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				c.publishWS(ctx, "ws_error", info, closeReason)
			}
			return
		}
		c.Dispatch(ctx, conn, info, raw)
	}
}

// Dispatch decodes one inbound frame and runs the matching handler.
func (c *Coordinator) Dispatch(ctx context.Context, conn Conn, info ConnInfo, raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
		c.notify(conn, "invalid event payload")
		return
	}

	switch env.Event {
	case models.EventJoinRoom:
		c.handleJoinRoom(ctx, conn, info, env.Data)
	case models.EventChatMessage:
		c.handleChatMessage(ctx, conn, info, env.Data)
	case models.EventMessageUpdate:
		c.handleMessageUpdate(ctx, conn, info, env.Data)
	case models.EventMessageReaction:
		c.handleMessageReaction(ctx, conn, info, env.Data)
	default:
		c.notify(conn, "unknown event: "+env.Event)
	}
}

func (c *Coordinator) handleJoinRoom(ctx context.Context, conn Conn, info ConnInfo, data json.RawMessage) {
	var p models.JoinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomCode == "" || p.Username == "" {
		c.notify(conn, "roomCode and username are required")
		return
	}

	// Re-join: leave the previous room before switching so the connection
	// never multicasts to two rooms.
	if prev, ok := c.sessions.Lookup(info.ConnID); ok {
		c.hub.Leave(prev.RoomCode, conn)
		c.hub.Broadcast(prev.RoomCode, models.EventChatMessage, models.ServerNotice{ServerMsg: prev.Username + " has left"})
	}

	c.sessions.Join(info.ConnID, p.RoomCode, p.Username)
	c.hub.Join(p.RoomCode, conn, info)

	c.notify(conn, "Welcome to room "+p.RoomCode+", "+p.Username)
	c.hub.BroadcastExcept(p.RoomCode, conn, models.EventChatMessage, models.ServerNotice{ServerMsg: p.Username + " has joined"})

	c.audit.Emit(ctx, telemetry.AuditPayload{
		Event:    telemetry.EventRoomJoined,
		RoomCode: p.RoomCode,
		Username: p.Username,
		ConnID:   info.ConnID,
	}, info.RequestID, info.TraceID)
}

func (c *Coordinator) handleChatMessage(ctx context.Context, conn Conn, info ConnInfo, data json.RawMessage) {
	sess, ok := c.sessions.Lookup(info.ConnID)
	if !ok {
		c.notify(conn, "join a room before sending messages")
		return
	}

	var p models.ChatMessagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.Content == "" {
		c.notify(conn, "content is required")
		return
	}

	username := p.Username
	if username == "" {
		username = sess.Username
	}
	msgType := p.Type
	if msgType == "" {
		msgType = "text"
	}

	now := time.Now().UTC()
	msg := models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   info.ConnID,
		Username:   username,
		ProfilePic: p.ProfilePic,
		Content:    p.Content,
		Type:       msgType,
		ReplyTo:    p.ReplyTo,
		Reactions:  []models.Reaction{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Optimistic broadcast: the room sees the message before it is durable.
	// A failed append is logged and counted, never surfaced to the sender.
	c.hub.Broadcast(sess.RoomCode, models.EventChatMessage, msg)
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.rooms.AppendMessage(pctx, sess.RoomCode, msg); err != nil {
			log.Printf("append message failed room=%s msg=%s: %v", sess.RoomCode, msg.ID.Hex(), err)
			observability.IncStoreWriteFailure("append_message")
		}
	}()

	c.audit.Emit(ctx, telemetry.AuditPayload{
		Event:     telemetry.EventMessageSent,
		RoomCode:  sess.RoomCode,
		Username:  username,
		MessageID: msg.ID.Hex(),
		ConnID:    info.ConnID,
	}, info.RequestID, info.TraceID)
}

func (c *Coordinator) handleMessageUpdate(ctx context.Context, conn Conn, info ConnInfo, data json.RawMessage) {
	sess, ok := c.sessions.Lookup(info.ConnID)
	if !ok {
		c.notify(conn, "join a room before editing messages")
		return
	}

	var p models.MessageUpdatePayload
	if err := json.Unmarshal(data, &p); err != nil || p.NewContent == "" || p.MessageID == "" || p.RoomCode == "" {
		c.notify(conn, "newContent, messageId and roomCode are required")
		return
	}

	msgID, err := primitive.ObjectIDFromHex(p.MessageID)
	if err != nil {
		c.notify(conn, "invalid message id")
		return
	}

	now := time.Now().UTC()
	matched, err := c.rooms.UpdateMessageContent(ctx, p.RoomCode, msgID, p.NewContent, now)
	if err != nil {
		log.Printf("update message failed room=%s msg=%s: %v", p.RoomCode, p.MessageID, err)
		observability.IncStoreWriteFailure("update_message")
		c.notify(conn, "could not update message")
		return
	}
	if !matched {
		c.notify(conn, "message not found")
		return
	}

	c.hub.Broadcast(p.RoomCode, models.EventMessageUpdate, models.MessageUpdateEvent{
		MessageID:  p.MessageID,
		NewContent: p.NewContent,
		UpdatedAt:  now,
	})

	c.audit.Emit(ctx, telemetry.AuditPayload{
		Event:     telemetry.EventMessageEdited,
		RoomCode:  p.RoomCode,
		Username:  sess.Username,
		MessageID: p.MessageID,
		ConnID:    info.ConnID,
	}, info.RequestID, info.TraceID)
}

func (c *Coordinator) handleMessageReaction(ctx context.Context, conn Conn, info ConnInfo, data json.RawMessage) {
	if _, ok := c.sessions.Lookup(info.ConnID); !ok {
		c.notify(conn, "join a room before reacting to messages")
		return
	}

	var p models.MessageReactionPayload
	if err := json.Unmarshal(data, &p); err != nil || p.MessageID == "" || p.RoomCode == "" || p.Emoji == "" || p.SenderUsername == "" {
		c.notify(conn, "messageId, roomCode, emoji and senderUsername are required")
		return
	}
	if p.Action != models.ReactionAdd && p.Action != models.ReactionRemove {
		c.notify(conn, "action must be add or remove")
		return
	}

	msgID, err := primitive.ObjectIDFromHex(p.MessageID)
	if err != nil {
		c.notify(conn, "invalid message id")
		return
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var modified bool
	if p.Action == models.ReactionAdd {
		modified, err = c.rooms.AddReaction(ctx, p.RoomCode, msgID, models.Reaction{
			Emoji:          p.Emoji,
			SenderUsername: p.SenderUsername,
			SenderID:       info.ConnID,
			Timestamp:      ts,
		})
	} else {
		modified, err = c.rooms.RemoveReaction(ctx, p.RoomCode, msgID, p.Emoji, p.SenderUsername)
	}
	if err != nil {
		log.Printf("reaction %s failed room=%s msg=%s: %v", p.Action, p.RoomCode, p.MessageID, err)
		observability.IncStoreWriteFailure("reaction_" + p.Action)
		c.notify(conn, "could not update reaction")
		return
	}
	if !modified {
		if p.Action == models.ReactionAdd {
			c.notify(conn, "message not found")
		}
		return
	}

	c.hub.Broadcast(p.RoomCode, models.EventMessageReaction, models.MessageReactionEvent{
		MessageID:      p.MessageID,
		Emoji:          p.Emoji,
		SenderUsername: p.SenderUsername,
		SenderID:       info.ConnID,
		Action:         p.Action,
		Timestamp:      ts,
	})
}

// Disconnect tears down the connection's session and announces the departure
// to the room it had joined. Safe to call for connections without a session.
func (c *Coordinator) Disconnect(ctx context.Context, conn Conn, info ConnInfo) {
	sess, ok := c.sessions.Remove(info.ConnID)
	if !ok {
		return
	}

	c.hub.Leave(sess.RoomCode, conn)
	c.hub.Broadcast(sess.RoomCode, models.EventChatMessage, models.ServerNotice{ServerMsg: sess.Username + " has left"})

	c.audit.Emit(ctx, telemetry.AuditPayload{
		Event:    telemetry.EventRoomLeft,
		RoomCode: sess.RoomCode,
		Username: sess.Username,
		ConnID:   info.ConnID,
	}, info.RequestID, info.TraceID)
}

func (c *Coordinator) notify(conn Conn, msg string) {
	if err := c.hub.Send(conn, models.EventChatMessage, models.ServerNotice{ServerMsg: msg}); err != nil {
		log.Printf("notice write error: %v", err)
	}
}

func (c *Coordinator) publishWS(ctx context.Context, event string, info ConnInfo, reason string) {
	_ = observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]any{
			"conn_id":     info.ConnID,
			"ip":          info.IP,
			"event":       event,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
