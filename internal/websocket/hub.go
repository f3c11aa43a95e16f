// Package websocket streams night-resolution events to moderator
// clients subscribed to a game.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is one outgoing message on a game's stream.
type Event struct {
	Type   string `json:"type"`
	GameID int64  `json:"gameId"`
	Data   any    `json:"data,omitempty"`
}

type broadcastMsg struct {
	gameID  int64
	payload []byte
}

// Hub tracks clients per game and fans events out to them.
type Hub struct {
	mu    sync.RWMutex
	games map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
}

func NewHub() *Hub {
	return &Hub{
		games:      make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 16),
	}
}

// Run processes registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.games[c.gameID] == nil {
				h.games[c.gameID] = make(map[*Client]bool)
			}
			h.games[c.gameID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.games[c.gameID]; ok {
				if clients[c] {
					delete(clients, c)
					close(c.send)
					if len(clients) == 0 {
						delete(h.games, c.gameID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.games[msg.gameID] {
				select {
				case c.send <- msg.payload:
				default:
					// Slow client; drop the message rather than the night.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends an event to every client watching a game.
func (h *Hub) Broadcast(gameID int64, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, GameID: gameID, Data: data})
	if err != nil {
		log.Printf("websocket: marshal %s event: %v", eventType, err)
		return
	}
	h.broadcast <- broadcastMsg{gameID: gameID, payload: payload}
}

// ClientCount reports how many clients watch a game. Used by tests.
func (h *Hub) ClientCount(gameID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
