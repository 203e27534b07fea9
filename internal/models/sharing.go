package models

import "time"

type SharingState string

const (
	SharingStateIdle   SharingState = "idle"
	SharingStateActive SharingState = "active"
)

// DeliveryOutcome is the result of one send attempt to one recipient.
type DeliveryOutcome struct {
	Recipient string `json:"recipient"`
	Succeeded bool   `json:"succeeded"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SharingSnapshot struct {
	State          SharingState `json:"state"`
	Recipients     int          `json:"recipients"`
	LastCoordinate *Coordinate  `json:"last_coordinate,omitempty"`
	LastSharedAt   *time.Time   `json:"last_shared_at,omitempty"`
	UpdatesShared  int          `json:"updates_shared"`
}
