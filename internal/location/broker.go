package location

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/ports"
)

// Broker is the in-process position source. The device publishes fixes into
// it and every open watch receives them through its own throttle.
type Broker struct {
	mu      sync.Mutex
	current *models.Coordinate
	watches map[*watch]struct{}
	now     func() time.Time
}

var (
	_ ports.PositionSource    = (*Broker)(nil)
	_ ports.PositionPublisher = (*Broker)(nil)
)

func NewBroker() *Broker {
	return &Broker{
		watches: make(map[*watch]struct{}),
		now:     time.Now,
	}
}

func (b *Broker) Publish(ctx context.Context, coord models.Coordinate) error {
	if !coord.IsValid() {
		return fmt.Errorf("invalid coordinate %v,%v", coord.Latitude, coord.Longitude)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := coord
	b.current = &c

	at := b.now()
	for w := range b.watches {
		w.offer(coord, at)
	}

	return nil
}

func (b *Broker) Current(ctx context.Context) (models.Coordinate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return models.Coordinate{}, models.ErrPositionUnavailable
	}
	return *b.current, nil
}

// Subscribe opens a watch. When a fix is already known it is emitted first.
func (b *Broker) Subscribe(ctx context.Context, config models.WatchConfig) (ports.Watch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var w *watch
	w = newWatch(config, func() {
		b.mu.Lock()
		delete(b.watches, w)
		b.mu.Unlock()
	})

	b.mu.Lock()
	b.watches[w] = struct{}{}
	if b.current != nil {
		w.offer(*b.current, b.now())
	}
	b.mu.Unlock()

	return w, nil
}

func (b *Broker) WatchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watches)
}
