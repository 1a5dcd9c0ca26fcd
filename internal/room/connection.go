package room

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Connection is a single user's live presence in a room. Messages flow out
// through OutChan to the websocket write pump; Cancel tears down the pump's
// context on removal.
type Connection struct {
	UserID   uuid.UUID
	Username string
	IsHost   bool
	Cancel   func()
	OutChan  chan interface{}

	mu     sync.Mutex
	closed bool
}

// Write pushes a message onto the connection's OutChan without blocking.
// A full channel or a closed connection drops the message; the client
// recovers from any gap with a resync snapshot.
func (c *Connection) Write(msg interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.OutChan <- msg:
	default:
		logrus.Warnf("room connection %s: out channel full, dropping message", c.UserID)
	}
}

// WriteError sends an error object to this connection only.
func (c *Connection) WriteError(msg string) {
	c.Write(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}

// Close shuts the outbound channel exactly once and cancels the pump context.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.OutChan)
	c.mu.Unlock()
	if c.Cancel != nil {
		c.Cancel()
	}
}
