package utility

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// NewUpgrader builds an upgrader that admits the same origins as the CORS
// allow-list. Requests without an Origin header (non-browser clients) pass.
func NewUpgrader(allowOrigins []string) *websocket.Upgrader {
	allowAll := slices.Contains(allowOrigins, "*")
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowAll {
				return true
			}
			return slices.Contains(allowOrigins, origin)
		},
	}
}

// Hub holds active connections: map[connectionID] -> connection.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*websocket.Conn)}
}

// Register a new client connection
func (h *Hub) Register(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
	log.Info().Str("conn_id", id).Msg("WebSocket Client Connected")
}

// Unregister a client (when it disconnects)
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		log.Info().Str("conn_id", id).Msg("WebSocket Client Disconnected")
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll sends a going-away frame to every client and closes it.
// http.Server.Shutdown does not track hijacked connections, so the server
// registers this as a shutdown hook.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for id, conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
		delete(h.clients, id)
	}
	log.Info().Msg("All WebSocket clients closed")
}
