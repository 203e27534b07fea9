package models

import "errors"

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrTransportUnavailable = errors.New("sms transport unavailable")
	ErrAssetPersistence     = errors.New("asset persistence failed")
	ErrPositionUnavailable  = errors.New("position unavailable")

	ErrNotOpen             = errors.New("camera view is not open")
	ErrRecordingInProgress = errors.New("recording in progress")
	ErrCameraPermission    = errors.New("camera permission not granted")
	ErrDeviceBusy          = errors.New("capture device is already recording")
	ErrNotRecording        = errors.New("capture device is not recording")
	ErrRecordingLimit      = errors.New("recording size limit reached")
	ErrRecordingAborted    = errors.New("recording ended without a file")

	ErrAlbumNotFound = errors.New("album not found")
	ErrAlbumExists   = errors.New("album already exists")
	ErrAssetNotFound = errors.New("asset not found")
)
