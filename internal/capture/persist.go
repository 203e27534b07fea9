package capture

import (
	"context"
	"errors"
	"fmt"

	"sosapp/internal/models"
)

const (
	AlertTitleSuccess          = "Success"
	AlertTitleError            = "Error"
	AlertTitlePermissionDenied = "Permission Denied"

	MsgSaveSucceeded       = "Video saved to gallery successfully!"
	MsgSavedNotification   = "Video saved to gallery!"
	MsgMediaPermissionDeny = "Cannot save video without media library permission"
	saveFailedPrefix       = "Failed to save video to gallery: "
	recordingFailedPrefix  = "Recording failed: "
)

func SaveFailedMessage(err error) string {
	return saveFailedPrefix + err.Error()
}

func RecordingFailedMessage(err error) string {
	return recordingFailedPrefix + err.Error()
}

// PersistAsset saves a finished clip into its album and reports the outcome
// to the user. Every failure ends in an alert; the returned error wraps
// ErrPermissionDenied or ErrAssetPersistence.
func (s *Session) PersistAsset(ctx context.Context, captured models.CapturedAsset) (*models.Asset, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	albumName := captured.AlbumName
	if albumName == "" {
		albumName = s.opts.AlbumName
	}
	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"recording_id": captured.File.ID,
		"album":        albumName,
	})

	if !s.store.HasPermission(ctx) {
		granted, err := s.store.RequestPermission(ctx)
		if err != nil {
			return nil, s.fail(ctx, fmt.Errorf("media library permission request failed: %w", err))
		}
		if !granted {
			log.Warn("Media library permission denied")
			s.alerter.Alert(ctx, AlertTitlePermissionDenied, MsgMediaPermissionDeny)
			return nil, fmt.Errorf("media library: %w", models.ErrPermissionDenied)
		}
	}

	asset, err := s.store.CreateAsset(ctx, captured.File)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	if err := s.addToAlbum(ctx, albumName, asset); err != nil {
		return nil, s.fail(ctx, err)
	}

	log.WithField("asset_id", asset.ID).LogCaptureEvent("asset_saved", nil)
	s.alerter.Alert(ctx, AlertTitleSuccess, MsgSaveSucceeded)
	s.notifier.Notify(ctx, MsgSavedNotification)

	return asset, nil
}

// addToAlbum adds asset to the named album, creating the album with asset as
// its first entry when it does not exist yet.
func (s *Session) addToAlbum(ctx context.Context, name string, asset *models.Asset) error {
	album, err := s.store.GetAlbum(ctx, name)
	if err != nil {
		return err
	}

	if album == nil {
		_, err = s.store.CreateAlbum(ctx, name, asset)
		if !errors.Is(err, models.ErrAlbumExists) {
			return err
		}

		// Another writer created it first.
		album, err = s.store.GetAlbum(ctx, name)
		if err != nil {
			return err
		}
		if album == nil {
			return models.ErrAlbumNotFound
		}
	}

	return s.store.AddToAlbum(ctx, asset, album)
}

func (s *Session) fail(ctx context.Context, err error) error {
	s.logger.WithContext(ctx).WithError(err).Error("Failed to save video to gallery")
	s.alerter.Alert(ctx, AlertTitleError, SaveFailedMessage(err))
	return fmt.Errorf("%w: %v", models.ErrAssetPersistence, err)
}
