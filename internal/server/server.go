// Package server exposes round engines over WebSocket. Every connection gets
// its own engine, so sessions never share a score board.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/rpsduel/internal/round"
)

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "rpsduel_active_sessions",
	Help: "Number of connected WebSocket sessions.",
})

// EngineFactory builds the engine for a new session.
type EngineFactory func(sessionID string, logger *log.Logger) *round.Engine

// Server represents the WebSocket server
type Server struct {
	addr          string
	upgrader      websocket.Upgrader
	newEngine     EngineFactory
	connections   map[*Connection]bool
	logger        *log.Logger
	mu            sync.RWMutex
	httpServer    *http.Server
	shutdownGrace time.Duration
}

// NewServer creates a new WebSocket server
func NewServer(addr string, newEngine EngineFactory, logger *log.Logger) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		newEngine:     newEngine,
		connections:   make(map[*Connection]bool),
		logger:        logger.WithPrefix("server"),
		shutdownGrace: 5 * time.Second,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes served by s
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting WebSocket server", "addr", l.Addr().String())
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(l)
}

// Shutdown stops accepting connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownGrace)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)

	// Hijacked WebSocket connections are not tracked by http.Server
	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return err
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()

	activeSessions.Inc()
	s.logger.Info("Client connected", "session", conn.id, "total", total)
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	_, ok := s.connections[conn]
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()

	if !ok {
		return
	}
	_ = conn.Close()
	activeSessions.Dec()
	s.logger.Info("Client disconnected", "session", conn.id, "total", total)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	id := uuid.NewString()
	engine := s.newEngine(id, s.logger.With("session", id))
	client := NewConnection(id, ws, engine, s.logger)
	client.Start()
	s.register(client)

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
