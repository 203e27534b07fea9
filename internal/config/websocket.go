package config

import (
	"time"
)

type WebSocketConfig struct {
	Path             string        `yaml:"path"`
	ReadBufferSize   int           `yaml:"read_buffer_size"`
	WriteBufferSize  int           `yaml:"write_buffer_size"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	MaxMessageSize   int64         `yaml:"max_message_size"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
}

func loadWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{
		Path:             getEnv("WEBSOCKET_PATH", "/ws"),
		ReadBufferSize:   getEnvAsInt("WEBSOCKET_READ_BUFFER_SIZE", 1024),
		WriteBufferSize:  getEnvAsInt("WEBSOCKET_WRITE_BUFFER_SIZE", 1024),
		HandshakeTimeout: getEnvAsDuration("WEBSOCKET_HANDSHAKE_TIMEOUT", 10*time.Second),
		MaxMessageSize:   getEnvAsInt64("WEBSOCKET_MAX_MESSAGE_SIZE", 1<<20),
		AllowedOrigins:   getEnvAsSlice("WEBSOCKET_ALLOWED_ORIGINS", []string{"*"}),
	}
}
