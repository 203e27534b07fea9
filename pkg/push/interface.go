package push

import "context"

type PushProvider interface {
	Name() string
	SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error)
}

type NotificationRequest struct {
	Token       string            `json:"token"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
	Sound       string            `json:"sound,omitempty"`
	Priority    string            `json:"priority,omitempty"` // high, normal
	CollapseKey string            `json:"collapse_key,omitempty"`
	ChannelID   string            `json:"channel_id,omitempty"`
}

type NotificationResponse struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Token     string `json:"token,omitempty"`
}
