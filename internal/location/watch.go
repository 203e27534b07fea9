package location

import (
	"sync"
	"time"

	"sosapp/internal/models"
)

// watch is a latest-wins subscription: it buffers at most one pending fix
// and a newer fix replaces one the consumer has not picked up yet.
type watch struct {
	mu       sync.Mutex
	updates  chan models.Coordinate
	throttle *Throttle
	closed   bool
	once     sync.Once
	onCancel func()
}

func newWatch(config models.WatchConfig, onCancel func()) *watch {
	return &watch{
		updates:  make(chan models.Coordinate, 1),
		throttle: NewThrottle(config),
		onCancel: onCancel,
	}
}

func (w *watch) Updates() <-chan models.Coordinate {
	return w.updates
}

// Cancel detaches the watch from its source and closes Updates. Safe to call
// more than once.
func (w *watch) Cancel() {
	w.once.Do(func() {
		if w.onCancel != nil {
			w.onCancel()
		}

		w.mu.Lock()
		w.closed = true
		close(w.updates)
		w.mu.Unlock()
	})
}

// offer reports whether coord passed the throttle and was queued.
func (w *watch) offer(coord models.Coordinate, at time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.throttle.Allow(coord, at) {
		return false
	}

	select {
	case w.updates <- coord:
		return true
	default:
	}

	// Drop the stale fix.
	select {
	case <-w.updates:
	default:
	}

	select {
	case w.updates <- coord:
	default:
	}
	return true
}
