package hub

import (
	"sync"

	"go.uber.org/zap"
)

type ClientInterface interface {
	ID() string
	SendBytes(b []byte)
	Close()
}

// Hub tracks the live subscriber set. Membership is dynamic: join on
// connect, leave on disconnect or send failure. Every broadcast goes to
// every client; connections carry no state beyond liveness.
type Hub struct {
	clients map[ClientInterface]bool
	logger  *zap.Logger
	mu      sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[ClientInterface]bool),
		logger:  logger,
	}
}

func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("Client connected", zap.String("id", client.ID()), zap.Int("clients", count))
}

// Unregister removes the client and closes it. Safe to call more than once
// for the same client.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	_, present := h.clients[client]
	if present {
		delete(h.clients, client)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if present {
		client.Close()
		h.logger.Debug("Client disconnected", zap.String("id", client.ID()), zap.Int("clients", count))
	}
}

// Broadcast fans one payload out to every live client. SendBytes never
// blocks (slow clients drop), so one stalled connection cannot hold up the
// rest of the set.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		client.SendBytes(msg)
	}
}

// Size returns the number of connected clients.
func (h *Hub) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
