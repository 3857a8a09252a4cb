// Package diag serves a live diagnostics dashboard: every time the
// watched source recompiles, connected browser clients receive the new
// disassembly over a WebSocket connection.
package diag

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Update is one message pushed to every connected client.
type Update struct {
	RunID       string    `json:"run_id"`
	Disassembly string    `json:"disassembly"`
	Err         string    `json:"error,omitempty"`
	At          time.Time `json:"at"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks connected dashboard clients and fans out Updates to all of
// them.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*websocket.Conn)}
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := uuid.NewString()

	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes update to every connected client, dropping any
// connection that fails to accept the write.
func (h *Hub) Broadcast(update Update) {
	body, err := json.Marshal(update)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			conn.Close()
			delete(h.clients, id)
		}
	}
}

// ClientCount reports how many dashboards are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
