package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bft-labs/stereosync/internal/ports"
)

// StatusFunc returns the JSON-serializable node status.
type StatusFunc func() any

// Server exposes the hub and node status over HTTP.
type Server struct {
	hub      *Hub
	statusFn StatusFunc
	logger   ports.Logger
	http     *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, hub *Hub, statusFn StatusFunc, logger ports.Logger) *Server {
	s := &Server{hub: hub, statusFn: statusFn, logger: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("info server listening", ports.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	payload := map[string]any{
		"ws_clients": s.hub.ClientCount(),
	}
	if s.statusFn != nil {
		payload["node"] = s.statusFn()
	}
	if msg, ok := s.hub.Latched(); ok {
		payload["last_info"] = msg
	}
	_ = json.NewEncoder(w).Encode(payload)
}
