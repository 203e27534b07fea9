package services

import (
	"context"
	"sync"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/pkg/logger"
	"sosapp/pkg/push"
)

const pushTimeout = 10 * time.Second

// Broadcaster is the live channel to the handset.
type Broadcaster interface {
	Send(msgType string, data interface{}) error
	ClientCount() int
}

type NotifierOptions struct {
	DeviceToken string
	Title       string
}

// Notifier shows status lines on the handset: always over the live channel,
// and as a push notification when a provider and device token are configured
// and the user allowed notifications. It is configured once at startup and
// used for the life of the process.
type Notifier struct {
	hub         Broadcaster
	push        push.PushProvider
	permissions ports.Permissions
	opts        NotifierOptions
	logger      *logger.Logger
	pending     sync.WaitGroup
}

var _ ports.Notifier = (*Notifier)(nil)

func NewNotifier(hub Broadcaster, pushProvider push.PushProvider, permissions ports.Permissions, opts NotifierOptions, log *logger.Logger) *Notifier {
	if opts.Title == "" {
		opts.Title = "Live Location Sharing"
	}

	return &Notifier{
		hub:         hub,
		push:        pushProvider,
		permissions: permissions,
		opts:        opts,
		logger:      log.WithComponent("notifier"),
	}
}

func (n *Notifier) Notify(ctx context.Context, text string) {
	log := n.logger.WithContext(ctx)

	if err := n.hub.Send("notification", map[string]string{
		"title": n.opts.Title,
		"body":  text,
	}); err != nil {
		log.WithError(err).Warn("Failed to queue in-app notification")
	}

	if n.push == nil || n.opts.DeviceToken == "" {
		return
	}

	if n.permissions != nil && !n.permissions.Granted(ctx, models.PermissionNotifications) {
		log.Debug("Notification permissions denied")
		return
	}

	n.pending.Add(1)
	go func(ctx context.Context) {
		defer n.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, pushTimeout)
		defer cancel()

		resp, err := n.push.SendNotification(ctx, &push.NotificationRequest{
			Token:    n.opts.DeviceToken,
			Title:    n.opts.Title,
			Body:     text,
			Sound:    "default",
			Priority: "high",
		})
		if err != nil {
			log.WithError(err).WithField("provider", n.push.Name()).Warn("Push notification failed")
			return
		}
		if resp != nil && !resp.Success {
			log.WithField("provider", n.push.Name()).WithField("detail", resp.Error).Warn("Push notification rejected")
		}
	}(context.WithoutCancel(ctx))
}

// Wait blocks until in-flight push deliveries finish.
func (n *Notifier) Wait() {
	n.pending.Wait()
}
