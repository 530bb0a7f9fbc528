package ws

import "time"

// Conn is the subset of *websocket.Conn the hub and coordinator need.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// ConnInfo describes a live websocket connection.
type ConnInfo struct {
	ConnID      string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
