// Package ws serves the diagnostic channel over HTTP: a WebSocket feed of
// info messages that latches the most recent one for late subscribers,
// plus health and status endpoints.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/stereosync/internal/ports"
)

const (
	writeWait   = 10 * time.Second
	publishWait = 2 * time.Second
	pongWait    = 60 * time.Second
	pingEvery   = (pongWait * 9) / 10
)

// InfoMessage is the JSON frame sent to WebSocket clients.
type InfoMessage struct {
	Type string    `json:"type"`
	Data string    `json:"data"`
	At   time.Time `json:"at"`
}

// Hub implements ports.InfoPublisher for WebSocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	logger   ports.Logger

	// publishMu orders broadcasts; mu guards the fields below.
	publishMu sync.Mutex
	mu        sync.Mutex
	clients   map[*websocket.Conn]*sync.Mutex
	latched   *InfoMessage
}

// NewHub creates an empty hub.
func NewHub(logger ports.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// PublishInfo latches text and broadcasts it to every connected client.
// Writes happen outside the client lock and give up at publishWait or the
// ctx deadline, whichever is sooner. Clients whose write fails are dropped.
func (h *Hub) PublishInfo(ctx context.Context, text string) error {
	msg := InfoMessage{Type: "info", Data: text, At: time.Now()}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	h.latched = &msg
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, writeMu := range h.clients {
		targets[conn] = writeMu
	}
	h.mu.Unlock()

	deadline := time.Now().Add(publishWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var wg sync.WaitGroup
	for conn, writeMu := range targets {
		wg.Add(1)
		go func(conn *websocket.Conn, writeMu *sync.Mutex) {
			defer wg.Done()
			if err := writeMessage(conn, writeMu, websocket.TextMessage, payload, deadline); err != nil {
				h.logger.Debug("dropping websocket client", ports.Err(err))
				h.removeClient(conn)
			}
		}(conn, writeMu)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latched returns the last published message, if any.
func (h *Hub) Latched() (InfoMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latched == nil {
		return InfoMessage{}, false
	}
	return *h.latched, true
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", ports.Err(err))
		return
	}
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The client's write lock is held from registration until the latched
	// message is sent, so a later broadcast cannot overtake it.
	writeMu := &sync.Mutex{}
	writeMu.Lock()
	h.mu.Lock()
	h.clients[conn] = writeMu
	latched := h.latched
	h.mu.Unlock()

	if latched != nil {
		if payload, err := json.Marshal(latched); err == nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.TextMessage, payload)
		}
	}
	writeMu.Unlock()

	go h.serveClient(conn, writeMu)
}

// serveClient keeps the connection alive and drains client frames.
// Clients never send anything meaningful; reads exist to notice closes.
func (h *Hub) serveClient(conn *websocket.Conn, writeMu *sync.Mutex) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := writeMessage(conn, writeMu, websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()
	defer close(done)
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		h.removeClient(conn)
	}
}

func writeMessage(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte, deadline time.Time) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(deadline)
	return conn.WriteMessage(messageType, payload)
}
