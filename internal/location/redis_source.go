package location

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/pkg/cache"
	"sosapp/pkg/logger"
)

// RedisSource keeps the latest fix under a key and fans fixes out over a
// pub/sub channel, so several processes can observe the same device.
type RedisSource struct {
	cache      *cache.RedisCache
	channel    string
	currentKey string
	logger     *logger.Logger
	now        func() time.Time
}

var (
	_ ports.PositionSource    = (*RedisSource)(nil)
	_ ports.PositionPublisher = (*RedisSource)(nil)
)

func NewRedisSource(redisCache *cache.RedisCache, channel, currentKey string, log *logger.Logger) *RedisSource {
	return &RedisSource{
		cache:      redisCache,
		channel:    channel,
		currentKey: currentKey,
		logger:     log.WithComponent("redis_position_source"),
		now:        time.Now,
	}
}

func (r *RedisSource) Publish(ctx context.Context, coord models.Coordinate) error {
	if !coord.IsValid() {
		return fmt.Errorf("invalid coordinate %v,%v", coord.Latitude, coord.Longitude)
	}

	if err := r.cache.Set(ctx, r.currentKey, coord, 0); err != nil {
		return fmt.Errorf("failed to store current position: %w", err)
	}

	if err := r.cache.Publish(ctx, r.channel, coord); err != nil {
		return fmt.Errorf("failed to publish position: %w", err)
	}

	return nil
}

func (r *RedisSource) Current(ctx context.Context) (models.Coordinate, error) {
	var coord models.Coordinate
	if err := r.cache.Get(ctx, r.currentKey, &coord); err != nil {
		if cache.IsMiss(err) {
			return models.Coordinate{}, models.ErrPositionUnavailable
		}
		return models.Coordinate{}, fmt.Errorf("failed to read current position: %w", err)
	}
	return coord, nil
}

func (r *RedisSource) Subscribe(ctx context.Context, config models.WatchConfig) (ports.Watch, error) {
	pubsub := r.cache.Subscribe(ctx, r.channel)

	// Wait for the subscription confirmation so no fix published after
	// Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	messages := pubsub.Channel()
	done := make(chan struct{})
	w := newWatch(config, func() {
		pubsub.Close()
		<-done
	})

	go func() {
		defer close(done)

		for msg := range messages {
			coord, err := decodeCoordinate(msg.Payload)
			if err != nil {
				r.logger.WithError(err).Warn("Dropping malformed position message")
				continue
			}
			w.offer(coord, r.now())
		}
	}()

	return w, nil
}

func decodeCoordinate(payload string) (models.Coordinate, error) {
	var coord models.Coordinate
	if err := json.Unmarshal([]byte(payload), &coord); err != nil {
		return models.Coordinate{}, fmt.Errorf("failed to decode position: %w", err)
	}
	if !coord.IsValid() {
		return models.Coordinate{}, fmt.Errorf("position out of range: %v,%v", coord.Latitude, coord.Longitude)
	}
	return coord, nil
}
