package capture

import (
	"context"
	"sync"
	"time"

	"sosapp/internal/models"
)

type fakeDevice struct {
	mu       sync.Mutex
	results  chan models.RecordingResult
	starts   int
	stops    int
	startErr error
	onStop   func()
}

func (f *fakeDevice) StartRecording(context.Context) (<-chan models.RecordingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.startErr != nil {
		return nil, f.startErr
	}
	f.starts++
	f.results = make(chan models.RecordingResult, 1)
	return f.results, nil
}

func (f *fakeDevice) StopRecording(context.Context) {
	f.mu.Lock()
	f.stops++
	hook := f.onStop
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (f *fakeDevice) finish(result models.RecordingResult) {
	f.mu.Lock()
	ch := f.results
	f.mu.Unlock()

	ch <- result
	close(ch)
}

func (f *fakeDevice) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

type fakeStore struct {
	mu             sync.Mutex
	permission     bool
	grantOnRequest bool
	requestErr     error
	createErr      error
	addErr         error
	racedCreate    bool

	permissionRequests int
	createCalls        int
	createAlbumCalls   int
	assets             map[string]*models.Asset
	albums             map[string]*models.Album
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		permission: true,
		assets:     map[string]*models.Asset{},
		albums:     map[string]*models.Album{},
	}
}

func (f *fakeStore) HasPermission(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.permission
}

func (f *fakeStore) RequestPermission(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.permissionRequests++
	if f.requestErr != nil {
		return false, f.requestErr
	}
	f.permission = f.grantOnRequest
	return f.permission, nil
}

func (f *fakeStore) CreateAsset(_ context.Context, file models.FileHandle) (*models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	asset := &models.Asset{ID: file.ID, Key: file.Path, Size: file.Size, CreatedAt: time.Now()}
	f.assets[asset.ID] = asset
	return asset, nil
}

func (f *fakeStore) GetAlbum(_ context.Context, name string) (*models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	album, ok := f.albums[name]
	if !ok {
		return nil, nil
	}
	cp := *album
	cp.AssetIDs = append([]string(nil), album.AssetIDs...)
	return &cp, nil
}

func (f *fakeStore) CreateAlbum(_ context.Context, name string, initial *models.Asset) (*models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createAlbumCalls++
	if f.racedCreate {
		// someone else won the race with an empty album
		f.racedCreate = false
		f.albums[name] = &models.Album{ID: "other", Name: name}
		return nil, models.ErrAlbumExists
	}
	if _, ok := f.albums[name]; ok {
		return nil, models.ErrAlbumExists
	}
	album := &models.Album{ID: "album-" + name, Name: name, AssetIDs: []string{initial.ID}}
	f.albums[name] = album
	return album, nil
}

func (f *fakeStore) AddToAlbum(_ context.Context, asset *models.Asset, album *models.Album) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.addErr != nil {
		return f.addErr
	}
	stored := f.albums[album.Name]
	for _, id := range stored.AssetIDs {
		if id == asset.ID {
			return nil
		}
	}
	stored.AssetIDs = append(stored.AssetIDs, asset.ID)
	return nil
}

func (f *fakeStore) albumCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.albums)
}

type alert struct {
	title string
	body  string
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []alert
}

func (f *fakeAlerter) Alert(_ context.Context, title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert{title, body})
}

func (f *fakeAlerter) all() []alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]alert(nil), f.alerts...)
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
	mu       sync.Mutex
	granted  map[models.PermissionKind]bool
	answer   bool
	requests int
}

func (f *fakePermissions) Granted(_ context.Context, kind models.PermissionKind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.granted[kind]
}

func (f *fakePermissions) Request(_ context.Context, kind models.PermissionKind) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.answer {
		f.granted[kind] = true
	}
	return f.answer, nil
}

func (f *fakePermissions) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}
