package ws

import (
	"encoding/json"
	"sync"

	"reward_platform/internal/logger"
)

// Event is one push notification delivered to a connected account.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub fans events out to the live connections of each account. An account may
// hold several connections (tabs); all of them receive every event.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.AccountID] == nil {
		h.clients[c.AccountID] = make(map[*Client]struct{})
	}
	h.clients[c.AccountID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.AccountID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.AccountID)
		}
	}
}

// Publish sends an event to every live connection of the account. Slow
// connections get dropped rather than blocking the publisher.
func (h *Hub) Publish(accountID int64, event Event) {
	if h == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("ws marshal failed", "error", err, "type", event.Type)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[accountID] {
		select {
		case c.send <- data:
		default:
			go c.Close()
		}
	}
}
