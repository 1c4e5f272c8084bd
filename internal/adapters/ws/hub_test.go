package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/stereosync/pkg/log"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readInfo(t *testing.T, conn *websocket.Conn) InfoMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg InfoMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestHub_BroadcastsToConnectedClients(t *testing.T) {
	hub := NewHub(log.NewNoopLogger())
	srv := httptest.NewServer(NewServer("", hub, nil, log.NewNoopLogger()).Handler())
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	waitClients(t, hub, 2)

	require.NoError(t, hub.PublishInfo(context.Background(), "hello"))

	assert.Equal(t, "hello", readInfo(t, a).Data)
	assert.Equal(t, "hello", readInfo(t, b).Data)
}

func TestHub_LatchesLastMessageForLateSubscribers(t *testing.T) {
	hub := NewHub(log.NewNoopLogger())
	srv := httptest.NewServer(NewServer("", hub, nil, log.NewNoopLogger()).Handler())
	defer srv.Close()

	ctx := context.Background()
	require.NoError(t, hub.PublishInfo(ctx, "first"))
	require.NoError(t, hub.PublishInfo(ctx, "Resetting camera driver at logical-time 6.000000s"))

	late := dial(t, srv)
	msg := readInfo(t, late)
	assert.Equal(t, "info", msg.Type)
	assert.Equal(t, "Resetting camera driver at logical-time 6.000000s", msg.Data)

	latched, ok := hub.Latched()
	require.True(t, ok)
	assert.Equal(t, msg.Data, latched.Data)
}

func TestHub_DropsClosedClients(t *testing.T) {
	hub := NewHub(log.NewNoopLogger())
	srv := httptest.NewServer(NewServer("", hub, nil, log.NewNoopLogger()).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitClients(t, hub, 0)
}

func TestHub_PublishDoesNotBlockOnStuckClient(t *testing.T) {
	hub := NewHub(log.NewNoopLogger())
	srv := httptest.NewServer(NewServer("", hub, nil, log.NewNoopLogger()).Handler())
	defer srv.Close()

	dial(t, srv)
	waitClients(t, hub, 1)

	// Hold the client's write lock as a slow in-flight write would.
	hub.mu.Lock()
	var writeMu *sync.Mutex
	for _, mu := range hub.clients {
		writeMu = mu
	}
	hub.mu.Unlock()
	writeMu.Lock()
	defer writeMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- hub.PublishInfo(ctx, "restarting") }()

	// The hub stays usable while the broadcast is pending.
	countDone := make(chan int, 1)
	go func() { countDone <- hub.ClientCount() }()
	select {
	case n := <-countDone:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("ClientCount blocked behind PublishInfo")
	}

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("PublishInfo ignored its context")
	}

	latched, ok := hub.Latched()
	require.True(t, ok)
	assert.Equal(t, "restarting", latched.Data)
}

func TestServer_HealthAndStatus(t *testing.T) {
	hub := NewHub(log.NewNoopLogger())
	status := func() any { return map[string]int{"restarts": 3} }
	srv := httptest.NewServer(NewServer("", hub, status, log.NewNoopLogger()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, hub.PublishInfo(context.Background(), "latched"))

	resp, err = http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Clients  int            `json:"ws_clients"`
		Node     map[string]int `json:"node"`
		LastInfo InfoMessage    `json:"last_info"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0, body.Clients)
	assert.Equal(t, 3, body.Node["restarts"])
	assert.Equal(t, "latched", body.LastInfo.Data)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	hub := NewHub(log.NewNoopLogger())
	s := NewServer("127.0.0.1:0", hub, nil, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
