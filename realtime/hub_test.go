package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcast(t *testing.T) {
	hub, url := newTestHub(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(context.Background(), "nuevoPedido", map[string]any{"id": 7})

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Event string         `json:"event"`
			Data  map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "nuevoPedido", msg.Event)
		assert.Equal(t, float64(7), msg.Data["id"])
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub, url := newTestHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubConcurrentPublish(t *testing.T) {
	hub, url := newTestHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.Publish(context.Background(), "nuevoPedido", i)
		}(i)
	}
	wg.Wait()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for i := 0; i < n; i++ {
		_, _, err := conn.ReadMessage()
		require.NoError(t, err)
	}
}

type recorder struct{ events []string }

func (r *recorder) Publish(_ context.Context, event string, _ any) {
	r.events = append(r.events, event)
}

func TestMultiPublish(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Multi{a, b}.Publish(context.Background(), "nuevoPedido", nil)
	assert.Equal(t, []string{"nuevoPedido"}, a.events)
	assert.Equal(t, []string{"nuevoPedido"}, b.events)
}

func TestHubPublishDoesNotWaitForStalledClient(t *testing.T) {
	hub, url := newTestHub(t)
	stalled := dial(t, url)
	_ = stalled // never read from
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	payload := strings.Repeat("x", 64<<10)
	for i := 0; i < 1000; i++ {
		start := time.Now()
		hub.Publish(context.Background(), "nuevoPedido", payload)
		require.Less(t, time.Since(start), time.Second, "publish %d blocked", i)
	}

	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)
}
