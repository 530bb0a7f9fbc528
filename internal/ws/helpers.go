package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID mints an opaque handle for a websocket connection. It is a
// correlation key only, not a user identity.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
