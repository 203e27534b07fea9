package services

import (
	"context"
	"io"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/pkg/logger"
	"sosapp/pkg/websocket"
)

// DevicePermissions records the handset's answers and prompts it on connect.
type DevicePermissions interface {
	Set(ctx context.Context, kind models.PermissionKind, granted bool) error
	Status(kind models.PermissionKind) models.PermissionStatus
	Request(ctx context.Context, kind models.PermissionKind) (bool, error)
}

type permissionAnswer struct {
	Kind    models.PermissionKind `json:"kind"`
	Granted bool                  `json:"granted"`
}

// DeviceInbound routes what the handset sends over the live channel:
// position fixes, permission answers and raw video bytes.
type DeviceInbound struct {
	positions   ports.PositionPublisher
	permissions DevicePermissions
	video       io.Writer
	logger      *logger.Logger
}

var (
	_ websocket.InboundHandler = (*DeviceInbound)(nil)
	_ websocket.ConnectHandler = (*DeviceInbound)(nil)
)

func NewDeviceInbound(positions ports.PositionPublisher, permissions DevicePermissions, video io.Writer, log *logger.Logger) *DeviceInbound {
	return &DeviceInbound{
		positions:   positions,
		permissions: permissions,
		video:       video,
		logger:      log.WithComponent("device_inbound"),
	}
}

func (d *DeviceInbound) HandleMessage(ctx context.Context, msg websocket.Message) {
	log := d.logger.WithContext(ctx).WithField("type", msg.Type)

	switch msg.Type {
	case "location_update":
		var coord models.Coordinate
		if err := msg.Decode(&coord); err != nil {
			log.WithError(err).Warn("Malformed location update")
			return
		}
		if err := d.positions.Publish(ctx, coord); err != nil {
			log.WithError(err).Warn("Failed to publish position")
		}

	case "permission_response":
		var answer permissionAnswer
		if err := msg.Decode(&answer); err != nil {
			log.WithError(err).Warn("Malformed permission response")
			return
		}
		if err := d.permissions.Set(ctx, answer.Kind, answer.Granted); err != nil {
			log.WithError(err).Warn("Failed to record permission")
		}

	default:
		log.Debug("Ignoring device message")
	}
}

func (d *DeviceInbound) HandleBinary(ctx context.Context, data []byte) {
	if _, err := d.video.Write(data); err != nil {
		d.logger.WithContext(ctx).WithError(err).WithField("bytes", len(data)).Warn("Video chunk rejected")
	}
}

// HandleConnect asks a freshly connected handset for notification access
// unless the user has already answered.
func (d *DeviceInbound) HandleConnect(ctx context.Context) {
	if d.permissions.Status(models.PermissionNotifications) != models.PermissionUndetermined {
		return
	}

	log := d.logger.WithContext(ctx)
	granted, err := d.permissions.Request(ctx, models.PermissionNotifications)
	if err != nil {
		log.WithError(err).Warn("Failed to request notification permission")
		return
	}
	if !granted {
		log.Info("Notification permissions denied")
	}
}
