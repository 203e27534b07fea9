package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sosapp/pkg/logger"
)

type Config struct {
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	MaxMessageSize   int64
	AllowedOrigins   []string
}

type Handler struct {
	hub            *Hub
	inbound        InboundHandler
	upgrader       websocket.Upgrader
	maxMessageSize int64
	logger         *logger.Logger
}

func NewHandler(hub *Hub, inbound InboundHandler, config Config, log *logger.Logger) *Handler {
	maxMessageSize := config.MaxMessageSize
	if maxMessageSize <= 0 {
		maxMessageSize = 1 << 20
	}

	return &Handler{
		hub:     hub,
		inbound: inbound,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
			HandshakeTimeout: config.HandshakeTimeout,
			CheckOrigin:      originChecker(config.AllowedOrigins),
		},
		maxMessageSize: maxMessageSize,
		logger:         log.WithComponent("websocket_handler"),
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithContext(c.Request.Context()).WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	// The request context ends when this handler returns; the connection outlives it.
	ctx := context.WithoutCancel(c.Request.Context())

	client := NewClient(ctx, h.hub, conn, h.inbound, h.logger.WithContext(ctx))
	if !h.hub.addClient(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.maxMessageSize)

	if hook, ok := h.inbound.(ConnectHandler); ok {
		go hook.HandleConnect(ctx)
	}
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}

	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
