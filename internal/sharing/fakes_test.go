package sharing

import (
	"context"
	"errors"
	"sync"

	"sosapp/internal/models"
	"sosapp/internal/ports"
)

type fakeWatch struct {
	updates chan models.Coordinate
	once    sync.Once
	source  *fakeSource
}

func (w *fakeWatch) Updates() <-chan models.Coordinate { return w.updates }

func (w *fakeWatch) Cancel() {
	w.once.Do(func() {
		w.source.mu.Lock()
		w.source.cancels++
		w.source.mu.Unlock()
		close(w.updates)
	})
}

type fakeSource struct {
	mu            sync.Mutex
	subscriptions int
	cancels       int
	configs       []models.WatchConfig
	watches       []*fakeWatch
	err           error
}

func (f *fakeSource) Current(context.Context) (models.Coordinate, error) {
	return models.Coordinate{}, models.ErrPositionUnavailable
}

func (f *fakeSource) Subscribe(_ context.Context, config models.WatchConfig) (ports.Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	w := &fakeWatch{updates: make(chan models.Coordinate), source: f}
	f.subscriptions++
	f.configs = append(f.configs, config)
	f.watches = append(f.watches, w)
	return w, nil
}

func (f *fakeSource) stats() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscriptions, f.cancels
}

func (f *fakeSource) lastWatch() *fakeWatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watches[len(f.watches)-1]
}

type sentMessage struct {
	recipient string
	text      string
}

type fakeDispatcher struct {
	mu          sync.Mutex
	unavailable bool
	failFor     map[string]bool
	sent        []sentMessage

	// entered is signaled when a send begins; gate holds it until closed.
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeDispatcher) IsAvailable(context.Context) bool {
	return !f.unavailable
}

func (f *fakeDispatcher) Send(_ context.Context, recipient, text string) models.DeliveryOutcome {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, sentMessage{recipient: recipient, text: text})
	if f.failFor[recipient] {
		return models.DeliveryOutcome{Recipient: recipient, Error: errors.New("carrier rejected").Error()}
	}
	return models.DeliveryOutcome{Recipient: recipient, Succeeded: true}
}

func (f *fakeDispatcher) sends() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type fakePermissions struct {
	granted map[models.PermissionKind]bool
	answer  bool
	asked   int
}

func (f *fakePermissions) Granted(_ context.Context, kind models.PermissionKind) bool {
	return f.granted[kind]
}

func (f *fakePermissions) Request(_ context.Context, kind models.PermissionKind) (bool, error) {
	f.asked++
	return f.answer, nil
}
