package ports

import (
	"context"

	"sosapp/internal/models"
)

// ----- Position Source -----

// Watch is a live position subscription. Updates is closed once Cancel returns.
type Watch interface {
	Updates() <-chan models.Coordinate
	Cancel()
}

type PositionSource interface {
	Current(ctx context.Context) (models.Coordinate, error)
	Subscribe(ctx context.Context, config models.WatchConfig) (Watch, error)
}

// PositionPublisher accepts fixes reported by the device.
type PositionPublisher interface {
	Publish(ctx context.Context, coord models.Coordinate) error
}

// ----- Messaging -----

type MessageDispatcher interface {
	IsAvailable(ctx context.Context) bool
	Send(ctx context.Context, recipient, text string) models.DeliveryOutcome
}

// Notifier delivers a user-visible status line. It never reports failure.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Alerter raises a confirmation dialog the user has to dismiss.
type Alerter interface {
	Alert(ctx context.Context, title, body string)
}

// ----- Capture -----

// CaptureDevice records one clip at a time. The channel returned by
// StartRecording yields exactly one result and is then closed.
type CaptureDevice interface {
	StartRecording(ctx context.Context) (<-chan models.RecordingResult, error)
	StopRecording(ctx context.Context)
}

// AssetStore persists finished clips into named albums. GetAlbum returns
// (nil, nil) when the album does not exist.
type AssetStore interface {
	HasPermission(ctx context.Context) bool
	RequestPermission(ctx context.Context) (bool, error)
	CreateAsset(ctx context.Context, file models.FileHandle) (*models.Asset, error)
	GetAlbum(ctx context.Context, name string) (*models.Album, error)
	CreateAlbum(ctx context.Context, name string, initial *models.Asset) (*models.Album, error)
	AddToAlbum(ctx context.Context, asset *models.Asset, album *models.Album) error
}

// ----- Permissions -----

type Permissions interface {
	Granted(ctx context.Context, kind models.PermissionKind) bool
	Request(ctx context.Context, kind models.PermissionKind) (bool, error)
}
