package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// startHub runs a hub behind a test server. Each connection's user comes
// from the "user" query parameter.
func startHub(t *testing.T, opts Options) (*Hub, string) {
	t.Helper()

	opts.Identify = func(r *http.Request) string { return r.URL.Query().Get("user") }
	hub := NewHub(opts)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestEvent_JSON(t *testing.T) {
	data, err := json.Marshal(Event{Type: "deck:updated", Data: map[string]int{"revision": 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"deck:updated","data":{"revision":3}}`, string(data))
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"http://localhost:3000"}

	assert.True(t, originAllowed(allowed, ""))
	assert.True(t, originAllowed(allowed, "http://localhost:3000"))
	assert.False(t, originAllowed(allowed, "http://evil.example"))
	assert.True(t, originAllowed([]string{"*"}, "http://anything.example"))
	assert.False(t, originAllowed(nil, "http://localhost:3000"))
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub, url := startHub(t, Options{})

	conns := []*websocket.Conn{dial(t, url), dial(t, url+"?user=alice")}
	waitForClients(t, hub, 2)

	require.True(t, hub.BroadcastEvent(Event{Type: "deck:updated", Data: "hello"}))

	for _, conn := range conns {
		event := readEvent(t, conn)
		assert.Equal(t, "deck:updated", event.Type)
		assert.Equal(t, "hello", event.Data)
	}
}

func TestHub_SendEventTargetsUser(t *testing.T) {
	hub, url := startHub(t, Options{})

	alice := dial(t, url+"?user=alice")
	bob := dial(t, url+"?user=bob")
	waitForClients(t, hub, 2)

	require.True(t, hub.SendEvent(Event{Type: "private", Data: 1}, "alice"))
	require.True(t, hub.BroadcastEvent(Event{Type: "public", Data: 2}))

	assert.Equal(t, "private", readEvent(t, alice).Type)
	assert.Equal(t, "public", readEvent(t, alice).Type)

	// Bob's first message is the public one.
	assert.Equal(t, "public", readEvent(t, bob).Type)
}

func TestHub_BurstIsOneEventPerFrame(t *testing.T) {
	hub, url := startHub(t, Options{})

	conn := dial(t, url+"?user=alice")
	waitForClients(t, hub, 1)

	const burst = 20
	for i := 0; i < burst; i++ {
		require.True(t, hub.SendEvent(Event{Type: "deck:updated", Data: float64(i)}, "alice"))
	}

	for i := 0; i < burst; i++ {
		event := readEvent(t, conn)
		assert.Equal(t, "deck:updated", event.Type)
		assert.Equal(t, float64(i), event.Data)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, url := startHub(t, Options{})

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
}

func TestHub_RejectsDisallowedOrigin(t *testing.T) {
	_, url := startHub(t, Options{AllowedOrigins: []string{"http://localhost:3000"}})

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_Stop(t *testing.T) {
	hub, url := startHub(t, Options{})

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	hub.Stop()
	hub.Stop()

	require.Eventually(t, hub.IsStopped, time.Second, 5*time.Millisecond)
	assert.False(t, hub.BroadcastEvent(Event{Type: "late"}))

	// The client sees the close frame.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	rec := httptest.NewRecorder()
	hub.ServeWs(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
