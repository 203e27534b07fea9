package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"sosapp/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// InboundHandler receives what the device sends over its connection.
// Text frames carry JSON messages, binary frames carry raw video bytes.
type InboundHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandleBinary(ctx context.Context, data []byte)
}

// ConnectHandler is implemented by inbound handlers that want to act once a
// device connection is registered.
type ConnectHandler interface {
	HandleConnect(ctx context.Context)
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	inbound InboundHandler
	ctx     context.Context
	logger  *logger.Logger
}

func NewClient(ctx context.Context, hub *Hub, conn *websocket.Conn, inbound InboundHandler, log *logger.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		inbound: inbound,
		ctx:     ctx,
		logger:  log,
	}
}

func (c *Client) RemoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

func (c *Client) readPump(maxMessageSize int64) {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("WebSocket read failed")
			}
			break
		}

		switch messageType {
		case websocket.BinaryMessage:
			if c.inbound != nil {
				c.inbound.HandleBinary(c.ctx, message)
			}
		case websocket.TextMessage:
			c.handleMessage(message)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.WithError(err).Warn("Error unmarshaling client message")
		return
	}

	if msg.Timestamp == 0 {
		msg.Timestamp = getCurrentTimestamp()
	}

	switch msg.Type {
	case "ping":
		pong, _ := NewMessage("pong", nil)
		data, _ := json.Marshal(pong)
		select {
		case c.send <- data:
		default:
		}

	default:
		if c.inbound != nil {
			c.inbound.HandleMessage(c.ctx, msg)
		}
	}
}
