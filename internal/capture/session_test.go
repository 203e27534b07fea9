package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sosapp/internal/models"
	"sosapp/pkg/logger"
)

type harness struct {
	device   *fakeDevice
	store    *fakeStore
	alerter  *fakeAlerter
	notifier *fakeNotifier
	perms    *fakePermissions
	session  *Session
}

func newHarness(cameraGranted bool) *harness {
	h := &harness{
		device:   &fakeDevice{},
		store:    newFakeStore(),
		alerter:  &fakeAlerter{},
		notifier: &fakeNotifier{},
		perms: &fakePermissions{granted: map[models.PermissionKind]bool{
			models.PermissionCamera: cameraGranted,
		}},
	}
	h.session = NewSession(h.device, h.store, h.alerter, h.notifier, h.perms, Options{}, logger.NewNop())
	return h
}

func clip(id string) models.FileHandle {
	return models.FileHandle{ID: id, Path: "/tmp/" + id + ".mp4", ContentType: "video/mp4", Size: 42}
}

func awaitOutcome(t *testing.T, ch <-chan models.CaptureOutcome) models.CaptureOutcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("recording outcome not delivered")
	}
	return models.CaptureOutcome{}
}

func TestTriggerSOS_OpensViewAndRequestsCamera(t *testing.T) {
	t.Parallel()

	h := newHarness(false)
	h.session.TriggerSOS(context.Background())

	require.Equal(t, models.CaptureStateOpen, h.session.Snapshot().State)
	require.Eventually(t, func() bool { return h.perms.requestCount() == 1 }, time.Second, 5*time.Millisecond)
	h.session.Wait()
}

func TestTriggerSOS_GrantedSkipsRequestAndIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	h.session.TriggerSOS(context.Background())
	h.session.TriggerSOS(context.Background())
	h.session.Wait()

	require.Zero(t, h.perms.requestCount())
	require.Equal(t, models.CaptureStateOpen, h.session.Snapshot().State)
}

func TestBeginRecording_RejectedWhenClosed(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	_, err := h.session.BeginRecording(context.Background())

	require.ErrorIs(t, err, models.ErrNotOpen)
	require.Equal(t, models.CaptureStateClosed, h.session.Snapshot().State)
	starts, _ := h.device.counts()
	require.Zero(t, starts)
}

func TestBeginRecording_RejectedWhileRecording(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	ctx := context.Background()
	h.session.TriggerSOS(ctx)

	_, err := h.session.BeginRecording(ctx)
	require.NoError(t, err)

	_, err = h.session.BeginRecording(ctx)
	require.ErrorIs(t, err, models.ErrNotOpen)
	require.Equal(t, models.CaptureStateRecording, h.session.Snapshot().State)

	h.device.finish(models.RecordingResult{Err: models.ErrRecordingAborted})
	h.session.Wait()
}

func TestBeginRecording_RequiresCameraPermission(t *testing.T) {
	t.Parallel()

	h := newHarness(false)
	h.perms.answer = false
	ctx := context.Background()

	h.session.TriggerSOS(ctx)
	h.session.Wait()

	_, err := h.session.BeginRecording(ctx)
	require.ErrorIs(t, err, models.ErrCameraPermission)
	require.Equal(t, models.CaptureStateOpen, h.session.Snapshot().State)
}

func TestBeginRecording_DeviceFailureKeepsViewOpen(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	h.device.startErr = models.ErrDeviceBusy
	ctx := context.Background()

	h.session.TriggerSOS(ctx)
	_, err := h.session.BeginRecording(ctx)

	require.ErrorIs(t, err, models.ErrDeviceBusy)
	require.Equal(t, models.CaptureStateOpen, h.session.Snapshot().State)
}

func TestRecordingLifecycle_PersistsIntoAlbum(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	ctx := context.Background()

	h.session.TriggerSOS(ctx)
	outcome, err := h.session.BeginRecording(ctx)
	require.NoError(t, err)
	require.Equal(t, models.CaptureStateRecording, h.session.Snapshot().State)

	// stop does not change state by itself
	h.session.StopRecording(ctx)
	_, stops := h.device.counts()
	require.Equal(t, 1, stops)
	require.Equal(t, models.CaptureStateRecording, h.session.Snapshot().State)

	h.device.finish(models.RecordingResult{File: clip("clip-1")})
	out := awaitOutcome(t, outcome)

	require.NoError(t, out.Err)
	require.Equal(t, "clip-1", out.Asset.ID)
	require.Equal(t, models.CaptureStateClosed, h.session.Snapshot().State)
	require.Equal(t, []alert{{AlertTitleSuccess, MsgSaveSucceeded}}, h.alerter.all())
	require.Equal(t, []string{MsgSavedNotification}, h.notifier.all())

	album, err := h.store.GetAlbum(ctx, "SOSApp")
	require.NoError(t, err)
	require.Equal(t, []string{"clip-1"}, album.AssetIDs)

	_, open := <-outcome
	require.False(t, open)
}

func TestRecordingLifecycle_DeviceErrorClosesAndAlerts(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	ctx := context.Background()

	h.session.TriggerSOS(ctx)
	outcome, err := h.session.BeginRecording(ctx)
	require.NoError(t, err)

	h.device.finish(models.RecordingResult{Err: errors.New("camera unplugged")})
	out := awaitOutcome(t, outcome)

	require.Error(t, out.Err)
	require.Nil(t, out.Asset)
	require.Equal(t, models.CaptureStateClosed, h.session.Snapshot().State)
	require.Equal(t, []alert{{AlertTitleError, "Recording failed: camera unplugged"}}, h.alerter.all())
	require.Zero(t, h.store.createCalls)
}

func TestStopRecording_NoopUnlessRecording(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	h.session.StopRecording(context.Background())

	_, stops := h.device.counts()
	require.Zero(t, stops)
}

func TestStopRecording_StateLockedWhileDeviceStops(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	ctx := context.Background()

	h.session.TriggerSOS(ctx)
	outcome, err := h.session.BeginRecording(ctx)
	require.NoError(t, err)

	var sessionLocked bool
	h.device.onStop = func() {
		if h.session.mu.TryLock() {
			h.session.mu.Unlock()
			return
		}
		sessionLocked = true
	}
	h.session.StopRecording(ctx)
	require.True(t, sessionLocked)

	h.device.finish(models.RecordingResult{Err: models.ErrRecordingAborted})
	awaitOutcome(t, outcome)
	h.session.Wait()
}

func TestCloseCameraView(t *testing.T) {
	t.Parallel()

	h := newHarness(true)
	ctx := context.Background()

	require.NoError(t, h.session.CloseCameraView(ctx))
	require.Equal(t, models.CaptureStateClosed, h.session.Snapshot().State)

	h.session.TriggerSOS(ctx)
	require.NoError(t, h.session.CloseCameraView(ctx))
	require.Equal(t, models.CaptureStateClosed, h.session.Snapshot().State)

	h.session.TriggerSOS(ctx)
	_, err := h.session.BeginRecording(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, h.session.CloseCameraView(ctx), models.ErrRecordingInProgress)
	require.Equal(t, models.CaptureStateRecording, h.session.Snapshot().State)

	h.device.finish(models.RecordingResult{Err: models.ErrRecordingAborted})
	h.session.Wait()
}
