package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"sosapp/pkg/logger"
	"sosapp/pkg/storage"
	"sosapp/pkg/websocket"
)

type closingStorage struct {
	storage.StorageProvider
	closed int
}

func (c *closingStorage) Close() error {
	c.closed++
	return nil
}

func TestInfrastructureClose(t *testing.T) {
	t.Parallel()

	// nothing opened yet
	(&infrastructure{logger: logger.NewNop()}).Close()

	blobs := &closingStorage{}
	infra := &infrastructure{storage: blobs, logger: logger.NewNop()}
	infra.Close()
	require.Equal(t, 1, blobs.closed)
}

func TestStartHub_DeliversMessagesQueuedBeforeStop(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub, stop := startHub(logger.NewNop())
	defer stop()

	router := gin.New()
	router.GET("/ws", websocket.NewHandler(hub, nil, websocket.Config{AllowedOrigins: []string{"*"}}, logger.NewNop()).HandleWebSocket)
	server := httptest.NewServer(router)
	defer server.Close()

	conn, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var welcome websocket.Message
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Send("notification", map[string]string{"body": "Live location sharing stopped."}))
	stop()

	var got websocket.Message
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "notification", got.Type)

	var payload map[string]string
	require.NoError(t, got.Decode(&payload))
	require.Equal(t, "Live location sharing stopped.", payload["body"])

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
}
