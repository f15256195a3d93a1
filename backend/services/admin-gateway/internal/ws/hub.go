package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

// EventSessionSelected is pushed whenever the selected session changes.
const EventSessionSelected = "session.selected"

// Event is the JSON frame sent to connected views.
type Event struct {
	Type    string          `json:"type"`
	Session *models.Session `json:"session"`
}

// Hub tracks connected views and routes session selection changes to their owners.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// SessionSelected sends the new selection to user's views; it matches registry.Listener.
func (h *Hub) SessionSelected(user string, s *models.Session) {
	payload, err := json.Marshal(Event{Type: EventSessionSelected, Session: s})
	if err != nil {
		h.logger.Error("failed to encode session event", zap.Error(err))
		return
	}
	h.SendTo(user, payload)
}

// SendTo queues msg on every view opened by user.
func (h *Hub) SendTo(user string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.user == user {
			c.enqueue(msg)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// remove must run before the client's send channel is closed.
func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}
