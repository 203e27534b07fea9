package capture

import (
	"context"
	"fmt"
	"sync"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/pkg/logger"
)

const DefaultAlbumName = "SOSApp"

type Options struct {
	AlbumName string
}

// Session drives the SOS camera flow: Closed, Open (camera view shown) and
// Recording. A finished recording always returns the session to Closed and
// is handed to PersistAsset.
type Session struct {
	mu    sync.Mutex
	state models.CaptureState

	// serializes album add-or-create
	persistMu sync.Mutex
	pending   sync.WaitGroup

	device      ports.CaptureDevice
	store       ports.AssetStore
	alerter     ports.Alerter
	notifier    ports.Notifier
	permissions ports.Permissions
	opts        Options
	logger      *logger.Logger
}

func NewSession(
	device ports.CaptureDevice,
	store ports.AssetStore,
	alerter ports.Alerter,
	notifier ports.Notifier,
	permissions ports.Permissions,
	opts Options,
	log *logger.Logger,
) *Session {
	if opts.AlbumName == "" {
		opts.AlbumName = DefaultAlbumName
	}

	return &Session{
		state:       models.CaptureStateClosed,
		device:      device,
		store:       store,
		alerter:     alerter,
		notifier:    notifier,
		permissions: permissions,
		opts:        opts,
		logger:      log.WithComponent("capture_session"),
	}
}

// TriggerSOS opens the camera view. A missing camera permission is requested
// in the background; the view opens regardless of the answer.
func (s *Session) TriggerSOS(ctx context.Context) {
	if !s.permissions.Granted(ctx, models.PermissionCamera) {
		s.pending.Add(1)
		go func(ctx context.Context) {
			defer s.pending.Done()

			granted, err := s.permissions.Request(ctx, models.PermissionCamera)
			entry := s.logger.WithContext(ctx).WithField("granted", granted)
			if err != nil {
				entry.WithError(err).Warn("Camera permission request failed")
				return
			}
			entry.Info("Camera permission answered")
		}(context.WithoutCancel(ctx))
	}

	s.mu.Lock()
	from := s.state
	if s.state == models.CaptureStateClosed {
		s.state = models.CaptureStateOpen
	}
	to := s.state
	s.mu.Unlock()

	s.logger.WithContext(ctx).LogCaptureEvent("sos_triggered", map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

// BeginRecording starts the capture device. The returned channel yields one
// outcome after the recording stopped, the session is back to Closed and the
// clip has been persisted (or the attempt failed), and is then closed.
func (s *Session) BeginRecording(ctx context.Context) (<-chan models.CaptureOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.CaptureStateOpen {
		return nil, fmt.Errorf("cannot record from %s: %w", s.state, models.ErrNotOpen)
	}

	if !s.permissions.Granted(ctx, models.PermissionCamera) {
		return nil, models.ErrCameraPermission
	}

	results, err := s.device.StartRecording(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start recording: %w", err)
	}

	s.state = models.CaptureStateRecording
	s.logger.WithContext(ctx).LogCaptureEvent("recording_started", nil)

	outcome := make(chan models.CaptureOutcome, 1)
	s.pending.Add(1)
	go s.awaitRecording(context.WithoutCancel(ctx), results, outcome)

	return outcome, nil
}

// StopRecording asks the device to stop. The session state changes only
// once the pending BeginRecording resolves. No-op unless Recording.
// The lock is held across the device call so a recording begun after the
// state check cannot be stopped by it.
func (s *Session) StopRecording(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.CaptureStateRecording {
		return
	}

	s.device.StopRecording(ctx)
	s.logger.WithContext(ctx).LogCaptureEvent("stop_requested", nil)
}

// CloseCameraView dismisses an open view without producing an asset.
func (s *Session) CloseCameraView(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case models.CaptureStateRecording:
		return models.ErrRecordingInProgress
	case models.CaptureStateOpen:
		s.state = models.CaptureStateClosed
		s.logger.WithContext(ctx).LogCaptureEvent("view_closed", nil)
	}

	return nil
}

func (s *Session) Snapshot() models.CaptureSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.CaptureSnapshot{
		State:     s.state,
		AlbumName: s.opts.AlbumName,
	}
}

// Wait blocks until background permission requests and pending recordings
// have finished.
func (s *Session) Wait() {
	s.pending.Wait()
}

func (s *Session) awaitRecording(ctx context.Context, results <-chan models.RecordingResult, outcome chan<- models.CaptureOutcome) {
	defer s.pending.Done()
	defer close(outcome)

	result, ok := <-results
	if !ok {
		result = models.RecordingResult{Err: models.ErrRecordingAborted}
	}

	s.mu.Lock()
	s.state = models.CaptureStateClosed
	s.mu.Unlock()

	if result.Err != nil {
		s.logger.WithContext(ctx).WithError(result.Err).Warn("Recording produced no clip")
		s.alerter.Alert(ctx, AlertTitleError, RecordingFailedMessage(result.Err))
		outcome <- models.CaptureOutcome{Err: result.Err}
		return
	}

	s.logger.WithContext(ctx).LogCaptureEvent("recording_finished", map[string]interface{}{
		"recording_id": result.File.ID,
		"size":         result.File.Size,
		"duration":     result.File.Duration.String(),
	})

	asset, err := s.PersistAsset(ctx, models.CapturedAsset{
		File:      result.File,
		AlbumName: s.opts.AlbumName,
	})
	outcome <- models.CaptureOutcome{Asset: asset, Err: err}
}
