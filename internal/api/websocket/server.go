package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fieldside/rdysl/internal/summary"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server pushes each completed summary refresh to connected clients.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
}

func NewServer() *Server {
	return &Server{hub: NewHub()}
}

// Start starts the WebSocket server.
func (s *Server) Start(port string) error {
	s.port = port

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/callups", s.handleCallups)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleCallups upgrades the connection and attaches it to the hub.
func (s *Server) handleCallups(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// BroadcastSnapshot pushes a refreshed summary to all connected clients.
// Wire it as the cache engine's refresh hook.
func (s *Server) BroadcastSnapshot(snap *summary.Snapshot) {
	data, err := json.Marshal(map[string]interface{}{
		"type":         "summary_refreshed",
		"summary":      snap.Players,
		"totalRecords": snap.TotalRecords,
		"lastUpdated":  snap.LastUpdated,
	})
	if err != nil {
		log.Printf("⚠️  Failed to marshal snapshot broadcast: %v", err)
		return
	}
	s.hub.Broadcast(data)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
