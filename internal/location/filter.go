package location

import (
	"time"

	"sosapp/internal/models"
	"sosapp/internal/utils"
)

// Throttle decides which fixes a subscription emits. The first fix always
// passes; after that a fix passes only when at least MinInterval has elapsed
// and the device moved at least MinDistance meters since the last emitted fix.
type Throttle struct {
	config models.WatchConfig
	last   *models.Coordinate
	lastAt time.Time
}

func NewThrottle(config models.WatchConfig) *Throttle {
	return &Throttle{config: config}
}

func (t *Throttle) Allow(coord models.Coordinate, at time.Time) bool {
	if t.last == nil {
		t.accept(coord, at)
		return true
	}

	if t.config.MinInterval > 0 && at.Sub(t.lastAt) < t.config.MinInterval {
		return false
	}

	if t.config.MinDistance > 0 {
		moved := utils.DistanceMeters(t.last.Latitude, t.last.Longitude, coord.Latitude, coord.Longitude)
		if moved < t.config.MinDistance {
			return false
		}
	}

	t.accept(coord, at)
	return true
}

func (t *Throttle) accept(coord models.Coordinate, at time.Time) {
	c := coord
	t.last = &c
	t.lastAt = at
}
