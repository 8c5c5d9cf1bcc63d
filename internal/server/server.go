/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
suggestion adapter into the router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"SymptomCheck_V0.1/internal/config"
	"SymptomCheck_V0.1/internal/symptom"
	"SymptomCheck_V0.1/internal/utility"
	"github.com/gorilla/websocket"
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// allowOrigins is the CORS allow-list.
	allowOrigins []string

	// adapter turns symptom text into suggestions.
	adapter *symptom.Adapter

	// hub tracks open WebSocket connections.
	hub *utility.Hub

	upgrader *websocket.Upgrader

	startedAt time.Time
}

// New builds the Server without starting it.
func New(cfg config.Config, adapter *symptom.Adapter) *Server {
	return &Server{
		port:         cfg.Port,
		allowOrigins: cfg.AllowOrigins,
		adapter:      adapter,
		hub:          utility.NewHub(),
		upgrader:     utility.NewUpgrader(cfg.AllowOrigins),
		startedAt:    time.Now(),
	}
}

// NewServer initializes a new Server instance and returns a configured *http.Server.
func NewServer(cfg config.Config, adapter *symptom.Adapter) *http.Server {
	newApp := New(cfg, adapter)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", newApp.port),
		Handler:     newApp.RegisterRoutes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// Provider calls are not bounded by the adapter; leave room for the outbound timeout.
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
	}
	server.RegisterOnShutdown(newApp.hub.CloseAll)

	return server
}
