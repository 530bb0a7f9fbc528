// Package session tracks which live connection belongs to which room and
// display username. Entries are process-local and never persisted.
package session

import "sync"

// Session binds a connection to a room for the connection's lifetime.
type Session struct {
	Username string
	RoomCode string
}

// Registry maps connection ids to sessions. The coordinator is the only
// writer for any given connection id; the mutex covers readers on other
// connections' goroutines.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Join records a session for the connection. Empty roomCode or username is
// ignored. An existing session is replaced; the caller is responsible for
// leaving the prior room's broadcast group first.
func (r *Registry) Join(connID, roomCode, username string) {
	if roomCode == "" || username == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = Session{Username: username, RoomCode: roomCode}
}

// Lookup returns the session for the connection, if any.
func (r *Registry) Lookup(connID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	return s, ok
}

// Remove deletes and returns the prior session. Used on disconnect.
func (r *Registry) Remove(connID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if ok {
		delete(r.sessions, connID)
	}
	return s, ok
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
