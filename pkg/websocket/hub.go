package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sosapp/pkg/logger"
)

const broadcastBuffer = 64

// Hub tracks the device connections and fans outbound messages out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage stamps a message of the given type and encodes data as its payload.
func NewMessage(msgType string, data interface{}) (Message, error) {
	msg := Message{
		Type:      msgType,
		Timestamp: getCurrentTimestamp(),
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Message{}, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
		}
		msg.Data = raw
	}

	return msg, nil
}

// Decode unmarshals the payload into dest.
func (m Message) Decode(dest interface{}) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("message %s has no payload", m.Type)
	}
	return json.Unmarshal(m.Data, dest)
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log.WithComponent("websocket_hub"),
	}
}

// Run serves registrations and broadcasts until ctx is done, then flushes
// queued broadcasts and closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.flush()
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.sendToAll(message)
		}
	}
}

// Broadcast queues msg for every connected client. It never blocks; when
// the queue is full the message is dropped and an error is returned.
func (h *Hub) Broadcast(msg Message) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = getCurrentTimestamp()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	select {
	case h.broadcast <- data:
		return nil
	default:
		h.logger.WithField("type", msg.Type).Warn("Broadcast queue full, dropping message")
		return fmt.Errorf("broadcast queue full, dropped %s", msg.Type)
	}
}

// Send encodes data under msgType and broadcasts it.
func (h *Hub) Send(msgType string, data interface{}) error {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		return err
	}
	return h.Broadcast(msg)
}

func (h *Hub) addClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) removeClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	h.mutex.Unlock()

	h.logger.WithField("remote_addr", client.RemoteAddr()).Info("Device connected")

	// Send welcome message
	welcome, _ := NewMessage("welcome", map[string]interface{}{
		"message": "Connected successfully",
	})
	data, _ := json.Marshal(welcome)
	h.sendToClient(client, data)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.WithField("remote_addr", client.RemoteAddr()).Info("Device disconnected")
	}
}

func (h *Hub) sendToAll(data []byte) {
	h.mutex.RLock()
	var slow []*Client
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range slow {
		h.logger.WithField("remote_addr", client.RemoteAddr()).Warn("Client send buffer full, disconnecting")
		h.unregisterClient(client)
	}
}

func (h *Hub) sendToClient(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

func (h *Hub) flush() {
	for {
		select {
		case message := <-h.broadcast:
			h.sendToAll(message)
		default:
			return
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
