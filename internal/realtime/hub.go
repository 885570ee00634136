// Package realtime pushes notifications to connected clients.
package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/notify"
)

const defaultBuffer = 16

var (
	ErrNotConnected = errors.New("user is not connected")
	ErrBufferFull   = errors.New("connection buffer is full")
)

// Conn is one registered stream. Only the latest registration of a user
// receives messages.
type Conn struct {
	ID     uuid.UUID
	UserID uuid.UUID
	ch     chan notify.Payload
}

// Messages is closed when the connection is unregistered or replaced.
func (c *Conn) Messages() <-chan notify.Payload {
	return c.ch
}

// Hub maps each user to their current connection.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*Conn
	buffer int
}

var _ notify.Transport = (*Hub)(nil)

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{conns: make(map[uuid.UUID]*Conn), buffer: buffer}
}

// Register replaces any earlier connection of the user.
func (h *Hub) Register(userID uuid.UUID) *Conn {
	conn := &Conn{ID: uuid.New(), UserID: userID, ch: make(chan notify.Payload, h.buffer)}

	h.mu.Lock()
	prev := h.conns[userID]
	h.conns[userID] = conn
	if prev != nil {
		close(prev.ch)
	}
	h.mu.Unlock()
	return conn
}

// Unregister removes conn if it is still the user's current connection.
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.conns[conn.UserID]; ok && cur.ID == conn.ID {
		delete(h.conns, conn.UserID)
		close(conn.ch)
	}
}

// Connected reports whether the user has a registered connection.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// Send never blocks.
func (h *Hub) Send(_ context.Context, userID uuid.UUID, payload notify.Payload) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[userID]
	if !ok {
		return ErrNotConnected
	}
	select {
	case conn.ch <- payload:
		return nil
	default:
		return ErrBufferFull
	}
}
