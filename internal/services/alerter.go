package services

import (
	"context"

	"sosapp/internal/ports"
	"sosapp/pkg/logger"
)

// Alerter raises a modal dialog on the handset.
type Alerter struct {
	hub    Broadcaster
	logger *logger.Logger
}

var _ ports.Alerter = (*Alerter)(nil)

func NewAlerter(hub Broadcaster, log *logger.Logger) *Alerter {
	return &Alerter{hub: hub, logger: log.WithComponent("alerter")}
}

func (a *Alerter) Alert(ctx context.Context, title, body string) {
	log := a.logger.WithContext(ctx).WithField("title", title)

	if err := a.hub.Send("alert", map[string]string{
		"title": title,
		"body":  body,
	}); err != nil {
		log.WithError(err).Warn("Failed to queue alert")
		return
	}

	if a.hub.ClientCount() == 0 {
		log.Warn("Alert raised with no device connected")
	}
}
