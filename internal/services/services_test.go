package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"sosapp/internal/models"
	"sosapp/pkg/logger"
	"sosapp/pkg/push"
	"sosapp/pkg/sms"
	"sosapp/pkg/websocket"
)

type sent struct {
	msgType string
	data    interface{}
}

type fakeHub struct {
	mu      sync.Mutex
	clients int
	sent    []sent
	err     error
}

func (f *fakeHub) Send(msgType string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{msgType, data})
	return nil
}

func (f *fakeHub) ClientCount() int { return f.clients }

type fakeSMS struct {
	available bool
	resp      *sms.SMSResponse
	err       error
	requests  []*sms.SMSRequest
}

func (f *fakeSMS) Name() string      { return "fake" }
func (f *fakeSMS) IsAvailable() bool { return f.available }

func (f *fakeSMS) SendSMS(_ context.Context, req *sms.SMSRequest) (*sms.SMSResponse, error) {
	f.requests = append(f.requests, req)
	return f.resp, f.err
}

type fakePush struct {
	mu       sync.Mutex
	requests []*push.NotificationRequest
}

func (f *fakePush) Name() string { return "fake_push" }

func (f *fakePush) SendNotification(_ context.Context, req *push.NotificationRequest) (*push.NotificationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &push.NotificationResponse{Success: true}, nil
}

type fakePermissions struct {
	granted map[models.PermissionKind]bool
}

func (f *fakePermissions) Granted(_ context.Context, kind models.PermissionKind) bool {
	return f.granted[kind]
}

func (f *fakePermissions) Request(context.Context, models.PermissionKind) (bool, error) {
	return false, nil
}

func TestSMSDispatcher_Availability(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	require.False(t, NewSMSDispatcher(nil, logger.NewNop()).IsAvailable(ctx))
	require.False(t, NewSMSDispatcher(&fakeSMS{available: false}, logger.NewNop()).IsAvailable(ctx))
	require.True(t, NewSMSDispatcher(&fakeSMS{available: true}, logger.NewNop()).IsAvailable(ctx))
}

func TestSMSDispatcher_Send(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	provider := &fakeSMS{available: true, resp: &sms.SMSResponse{MessageID: "SM1", Status: "queued"}}
	outcome := NewSMSDispatcher(provider, logger.NewNop()).Send(ctx, "+1 (555) 010-0000", "hello")
	require.True(t, outcome.Succeeded)
	require.Equal(t, "+1 (555) 010-0000", outcome.Recipient)
	require.Equal(t, "SM1", outcome.MessageID)
	require.Equal(t, "+15550100000", provider.requests[0].To)
	require.Equal(t, "hello", provider.requests[0].Message)

	failing := &fakeSMS{available: true, err: errors.New("invalid number")}
	outcome = NewSMSDispatcher(failing, logger.NewNop()).Send(ctx, "A", "hello")
	require.False(t, outcome.Succeeded)
	require.Equal(t, "invalid number", outcome.Error)

	rejected := &fakeSMS{available: true, resp: &sms.SMSResponse{MessageID: "SM2", Status: sms.StatusFailed}}
	outcome = NewSMSDispatcher(rejected, logger.NewNop()).Send(ctx, "B", "hello")
	require.False(t, outcome.Succeeded)
	require.Equal(t, "message failed", outcome.Error)

	outcome = NewSMSDispatcher(nil, logger.NewNop()).Send(ctx, "C", "hello")
	require.False(t, outcome.Succeeded)
}

func TestNotifier_InAppAndPush(t *testing.T) {
	t.Parallel()

	hub := &fakeHub{clients: 1}
	pusher := &fakePush{}
	perms := &fakePermissions{granted: map[models.PermissionKind]bool{models.PermissionNotifications: true}}

	n := NewNotifier(hub, pusher, perms, NotifierOptions{DeviceToken: "token-1"}, logger.NewNop())
	n.Notify(context.Background(), "Live location has been sent!")
	n.Wait()

	require.Len(t, hub.sent, 1)
	require.Equal(t, "notification", hub.sent[0].msgType)
	require.Equal(t, map[string]string{"title": "Live Location Sharing", "body": "Live location has been sent!"}, hub.sent[0].data)

	require.Len(t, pusher.requests, 1)
	require.Equal(t, "token-1", pusher.requests[0].Token)
	require.Equal(t, "Live Location Sharing", pusher.requests[0].Title)
}

func TestNotifier_SkipsPushWithoutPermissionOrToken(t *testing.T) {
	t.Parallel()

	hub := &fakeHub{}
	pusher := &fakePush{}
	denied := &fakePermissions{granted: map[models.PermissionKind]bool{}}

	n := NewNotifier(hub, pusher, denied, NotifierOptions{DeviceToken: "token-1"}, logger.NewNop())
	n.Notify(context.Background(), "x")
	n.Wait()

	noToken := NewNotifier(hub, pusher, nil, NotifierOptions{}, logger.NewNop())
	noToken.Notify(context.Background(), "y")
	noToken.Wait()

	require.Empty(t, pusher.requests)
	require.Len(t, hub.sent, 2)
}

func TestAlerter_SendsAlert(t *testing.T) {
	t.Parallel()

	hub := &fakeHub{clients: 1}
	NewAlerter(hub, logger.NewNop()).Alert(context.Background(), "Success", "Video saved to gallery successfully!")

	require.Equal(t, []sent{{"alert", map[string]string{"title": "Success", "body": "Video saved to gallery successfully!"}}}, hub.sent)
}

func TestPrompter(t *testing.T) {
	t.Parallel()

	hub := &fakeHub{}
	p := NewPrompter(hub)
	require.ErrorIs(t, p.Prompt(context.Background(), models.PermissionCamera), ErrNoDevice)

	hub.clients = 1
	require.NoError(t, p.Prompt(context.Background(), models.PermissionCamera))
	require.Equal(t, "permission_request", hub.sent[0].msgType)
}

type recordingPublisher struct {
	coords []models.Coordinate
}

func (r *recordingPublisher) Publish(_ context.Context, c models.Coordinate) error {
	r.coords = append(r.coords, c)
	return nil
}

type recordingSetter struct {
	kind    models.PermissionKind
	granted bool

	status     models.PermissionStatus
	answer     bool
	requestErr error
	requested  []models.PermissionKind
}

func (r *recordingSetter) Set(_ context.Context, kind models.PermissionKind, granted bool) error {
	r.kind, r.granted = kind, granted
	return nil
}

func (r *recordingSetter) Status(models.PermissionKind) models.PermissionStatus {
	if r.status == "" {
		return models.PermissionUndetermined
	}
	return r.status
}

func (r *recordingSetter) Request(_ context.Context, kind models.PermissionKind) (bool, error) {
	r.requested = append(r.requested, kind)
	return r.answer, r.requestErr
}

type chunkSink struct {
	data []byte
	err  error
}

func (c *chunkSink) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.data = append(c.data, p...)
	return len(p), nil
}

func message(t *testing.T, msgType string, data interface{}) websocket.Message {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return websocket.Message{Type: msgType, Data: raw}
}

func TestDeviceInbound_Routes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pub := &recordingPublisher{}
	setter := &recordingSetter{}
	sink := &chunkSink{}
	in := NewDeviceInbound(pub, setter, sink, logger.NewNop())

	in.HandleMessage(ctx, message(t, "location_update", map[string]float64{"latitude": 12.5, "longitude": -3.25}))
	require.Equal(t, []models.Coordinate{{Latitude: 12.5, Longitude: -3.25}}, pub.coords)

	in.HandleMessage(ctx, message(t, "permission_response", map[string]interface{}{"kind": "camera", "granted": true}))
	require.Equal(t, models.PermissionCamera, setter.kind)
	require.True(t, setter.granted)

	in.HandleMessage(ctx, websocket.Message{Type: "location_update"})
	in.HandleMessage(ctx, websocket.Message{Type: "unknown"})
	require.Len(t, pub.coords, 1)

	in.HandleBinary(ctx, []byte("abc"))
	require.Equal(t, []byte("abc"), sink.data)

	sink.err = models.ErrNotRecording
	in.HandleBinary(ctx, []byte("def"))
	require.Equal(t, []byte("abc"), sink.data)
}

func TestDeviceInbound_AsksForNotificationsOnConnect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	undetermined := &recordingSetter{answer: false}
	NewDeviceInbound(&recordingPublisher{}, undetermined, &chunkSink{}, logger.NewNop()).HandleConnect(ctx)
	require.Equal(t, []models.PermissionKind{models.PermissionNotifications}, undetermined.requested)

	failing := &recordingSetter{requestErr: errors.New("no device")}
	NewDeviceInbound(&recordingPublisher{}, failing, &chunkSink{}, logger.NewNop()).HandleConnect(ctx)
	require.Len(t, failing.requested, 1)

	for _, status := range []models.PermissionStatus{models.PermissionGranted, models.PermissionDenied} {
		answered := &recordingSetter{status: status}
		NewDeviceInbound(&recordingPublisher{}, answered, &chunkSink{}, logger.NewNop()).HandleConnect(ctx)
		require.Empty(t, answered.requested, status)
	}
}
