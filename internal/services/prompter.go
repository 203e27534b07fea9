package services

import (
	"context"
	"errors"

	"sosapp/internal/models"
)

var ErrNoDevice = errors.New("no device connected")

// Prompter asks the connected handset to show a system permission dialog.
type Prompter struct {
	hub Broadcaster
}

func NewPrompter(hub Broadcaster) *Prompter {
	return &Prompter{hub: hub}
}

func (p *Prompter) Prompt(ctx context.Context, kind models.PermissionKind) error {
	if p.hub.ClientCount() == 0 {
		return ErrNoDevice
	}

	return p.hub.Send("permission_request", map[string]string{
		"kind": string(kind),
	})
}
