package permissions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/pkg/logger"
)

// Prompter asks the device to show the system permission dialog for kind.
// The answer arrives later through Registry.Set.
type Prompter interface {
	Prompt(ctx context.Context, kind models.PermissionKind) error
}

// GrantStore persists answers across restarts.
type GrantStore interface {
	Save(ctx context.Context, kind models.PermissionKind, status models.PermissionStatus) error
	Load(ctx context.Context) (map[models.PermissionKind]models.PermissionStatus, error)
}

// Registry holds the device's permission answers and brokers prompts.
type Registry struct {
	mu       sync.Mutex
	statuses map[models.PermissionKind]models.PermissionStatus
	waiters  map[models.PermissionKind][]chan bool
	prompter Prompter
	store    GrantStore
	timeout  time.Duration
	logger   *logger.Logger
}

var _ ports.Permissions = (*Registry)(nil)

// NewRegistry builds a registry. prompter and store may be nil; without a
// prompter every Request for an ungranted kind resolves to denied.
func NewRegistry(prompter Prompter, store GrantStore, timeout time.Duration, log *logger.Logger) *Registry {
	return &Registry{
		statuses: make(map[models.PermissionKind]models.PermissionStatus),
		waiters:  make(map[models.PermissionKind][]chan bool),
		prompter: prompter,
		store:    store,
		timeout:  timeout,
		logger:   log.WithComponent("permissions"),
	}
}

// SetPrompter attaches the prompter once the device channel exists.
func (r *Registry) SetPrompter(prompter Prompter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompter = prompter
}

// Restore loads persisted answers. Answers already set in memory win.
func (r *Registry) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	stored, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore permissions: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for kind, status := range stored {
		if !kind.IsValid() {
			continue
		}
		if _, ok := r.statuses[kind]; !ok {
			r.statuses[kind] = status
		}
	}

	return nil
}

func (r *Registry) Granted(ctx context.Context, kind models.PermissionKind) bool {
	return r.Status(kind) == models.PermissionGranted
}

func (r *Registry) Status(kind models.PermissionKind) models.PermissionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status, ok := r.statuses[kind]; ok {
		return status
	}
	return models.PermissionUndetermined
}

func (r *Registry) Statuses() map[models.PermissionKind]models.PermissionStatus {
	kinds := []models.PermissionKind{
		models.PermissionLocation,
		models.PermissionCamera,
		models.PermissionNotifications,
		models.PermissionMediaLibrary,
	}

	out := make(map[models.PermissionKind]models.PermissionStatus, len(kinds))
	for _, kind := range kinds {
		out[kind] = r.Status(kind)
	}
	return out
}

// Request resolves immediately when kind is already granted. Otherwise it
// prompts the device and waits for its answer. No answer within the
// configured timeout counts as denied.
func (r *Registry) Request(ctx context.Context, kind models.PermissionKind) (bool, error) {
	if !kind.IsValid() {
		return false, fmt.Errorf("unknown permission kind %q", kind)
	}

	r.mu.Lock()
	if r.statuses[kind] == models.PermissionGranted {
		r.mu.Unlock()
		return true, nil
	}

	prompter := r.prompter
	if prompter == nil {
		r.mu.Unlock()
		r.logger.WithField("kind", kind).Warn("No device connected to prompt for permission")
		return false, nil
	}

	answer := make(chan bool, 1)
	r.waiters[kind] = append(r.waiters[kind], answer)
	r.mu.Unlock()

	if err := prompter.Prompt(ctx, kind); err != nil {
		r.dropWaiter(kind, answer)
		return false, fmt.Errorf("failed to prompt for %s permission: %w", kind, err)
	}

	var timeout <-chan time.Time
	if r.timeout > 0 {
		timer := time.NewTimer(r.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case granted := <-answer:
		return granted, nil
	case <-timeout:
		r.dropWaiter(kind, answer)
		r.logger.WithField("kind", kind).Warn("Permission prompt timed out")
		return false, nil
	case <-ctx.Done():
		r.dropWaiter(kind, answer)
		return false, ctx.Err()
	}
}

// Set records the device's answer and releases every pending Request for kind.
func (r *Registry) Set(ctx context.Context, kind models.PermissionKind, granted bool) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown permission kind %q", kind)
	}

	status := models.PermissionDenied
	if granted {
		status = models.PermissionGranted
	}

	r.mu.Lock()
	r.statuses[kind] = status
	waiters := r.waiters[kind]
	delete(r.waiters, kind)
	r.mu.Unlock()

	for _, w := range waiters {
		w <- granted
	}

	r.logger.WithFields(map[string]interface{}{
		"kind":    kind,
		"status":  status,
		"waiters": len(waiters),
	}).Info("Permission answered")

	if r.store != nil {
		if err := r.store.Save(ctx, kind, status); err != nil {
			r.logger.WithError(err).WithField("kind", kind).Warn("Failed to persist permission")
		}
	}

	return nil
}

func (r *Registry) dropWaiter(kind models.PermissionKind, answer chan bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	waiters := r.waiters[kind]
	for i, w := range waiters {
		if w == answer {
			r.waiters[kind] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(r.waiters[kind]) == 0 {
		delete(r.waiters, kind)
	}
}
