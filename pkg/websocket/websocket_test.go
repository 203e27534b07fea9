package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"sosapp/pkg/logger"
)

type recordingInbound struct {
	mu       sync.Mutex
	messages []Message
	binary   [][]byte
}

func (r *recordingInbound) HandleMessage(_ context.Context, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingInbound) HandleBinary(_ context.Context, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binary = append(r.binary, append([]byte(nil), data...))
}

func (r *recordingInbound) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages), len(r.binary)
}

func startServer(t *testing.T, inbound InboundHandler) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)

	handler := NewHandler(hub, inbound, Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		AllowedOrigins:  []string{"*"},
	}, logger.NewNop())

	router := gin.New()
	router.GET("/ws", handler.HandleWebSocket)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *gorilla.Conn {
	t.Helper()

	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestHub_BroadcastReachesDevice(t *testing.T) {
	hub, url := startServer(t, &recordingInbound{})
	conn := dial(t, url)

	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, "welcome", welcome.Type)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Send("notification", map[string]string{"text": "Live location has been sent!"}))

	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "notification", got.Type)

	var payload map[string]string
	require.NoError(t, got.Decode(&payload))
	require.Equal(t, "Live location has been sent!", payload["text"])
}

func TestClient_RoutesInboundFrames(t *testing.T) {
	inbound := &recordingInbound{}
	_, url := startServer(t, inbound)
	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(`{"type":"location_update","data":{"latitude":1,"longitude":2}}`)))
	require.NoError(t, conn.WriteMessage(gorilla.BinaryMessage, []byte{0x00, 0x01, 0x02}))
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(`not json`)))

	require.Eventually(t, func() bool {
		messages, binary := inbound.counts()
		return messages == 1 && binary == 1
	}, 2*time.Second, 10*time.Millisecond)

	inbound.mu.Lock()
	defer inbound.mu.Unlock()
	require.Equal(t, "location_update", inbound.messages[0].Type)
	require.Equal(t, []byte{0x00, 0x01, 0x02}, inbound.binary[0])
}

type connectingInbound struct {
	recordingInbound
	connected chan struct{}
}

func (c *connectingInbound) HandleConnect(context.Context) {
	close(c.connected)
}

func TestHandler_CallsConnectHook(t *testing.T) {
	inbound := &connectingInbound{connected: make(chan struct{})}
	hub, url := startServer(t, inbound)
	dial(t, url)

	select {
	case <-inbound.connected:
	case <-time.After(2 * time.Second):
		t.Fatal("connect hook not called")
	}
	require.Equal(t, 1, hub.ClientCount())
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	check := originChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://app.example.com")
	require.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	require.False(t, check(req))
}
