package sms

import "context"

type SMSProvider interface {
	Name() string
	IsAvailable() bool
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
}

type SMSRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // transactional, promotional
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

const (
	StatusFailed      = "failed"
	StatusUndelivered = "undelivered"
	StatusCanceled    = "canceled"
)

// IsFailure reports whether a provider status means the message will not arrive.
func IsFailure(status string) bool {
	switch status {
	case StatusFailed, StatusUndelivered, StatusCanceled:
		return true
	}
	return false
}
