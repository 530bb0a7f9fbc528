package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
)

// Hub maintains the per-room multicast groups. A connection joins a room's
// group and from then on receives every event broadcast to that room.
type Hub struct {
	rooms map[string]map[Conn]ConnInfo
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Conn]ConnInfo)}
}

// Join subscribes the connection to the room's broadcast group.
func (h *Hub) Join(roomCode string, conn Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomCode]; !ok {
		h.rooms[roomCode] = make(map[Conn]ConnInfo)
	}
	h.rooms[roomCode][conn] = info
}

// Leave removes the connection from the room's broadcast group.
func (h *Hub) Leave(roomCode string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomCode]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

// Members reports how many connections are subscribed to the room.
func (h *Hub) Members(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}

// Broadcast sends the event to every connection in the room.
func (h *Hub) Broadcast(roomCode, event string, data any) {
	h.broadcast(roomCode, nil, event, data)
}

// BroadcastExcept sends the event to every connection in the room except skip.
// Used for join/leave announcements, which the subject must not receive.
func (h *Hub) BroadcastExcept(roomCode string, skip Conn, event string, data any) {
	h.broadcast(roomCode, skip, event, data)
}

// Send writes the event to a single connection.
func (h *Hub) Send(conn Conn, event string, data any) error {
	payload, err := json.Marshal(models.OutboundEvent{Event: event, Data: data})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *Hub) broadcast(roomCode string, skip Conn, event string, data any) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.rooms[roomCode]))
	for conn := range h.rooms[roomCode] {
		if conn != skip {
			conns = append(conns, conn)
		}
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(models.OutboundEvent{Event: event, Data: data})
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.Leave(roomCode, conn)
			observability.IncWSEvent("ws_error")
		}
	}
}
