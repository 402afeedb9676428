package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"drawboard/domain"
	"drawboard/internal"
	"drawboard/observability"
	"drawboard/services"
)

// Server exposes the board over HTTP: the sync protocol on /ws and the
// static canvas assets on everything else.
type Server struct {
	log        *slog.Logger
	service    services.IBoardService
	monitor    *observability.Monitor
	room       domain.RoomID
	sendBuffer int
	staticDir  string
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

func NewServer(config internal.Config, service services.IBoardService,
	log *slog.Logger, monitor *observability.Monitor) *Server {
	s := &Server{
		log:        log,
		service:    service,
		monitor:    monitor,
		room:       domain.RoomID(config.DefaultRoom),
		sendBuffer: config.SendBufferSize,
		staticDir:  config.StaticDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The canvas page is served by this same process.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: s.Handler(),
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/stats", s.handleStats)
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	return mux
}

// handleStats exposes the runtime counters for quick inspection with
// curl, the same numbers the telemetry worker logs periodically.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.monitor.Snapshot()); err != nil {
		s.log.Warn("Stats encoding failed", "error", err)
	}
}

func (s *Server) ListenAndServe() error {
	s.log.Info("HTTP server listening", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight
// handlers up to the context deadline. Open sockets are closed by
// their read pumps failing once the listener goes away.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess := newSession(conn, s.room, s.sendBuffer, s.service, s.log)
	identity := s.service.Connect(s.room, sess)
	sess.id = identity.ID

	go sess.writePump()
	sess.readPump()
}
