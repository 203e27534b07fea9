package permissions

import (
	"context"

	"sosapp/internal/models"
	"sosapp/pkg/cache"
)

// RedisGrantStore mirrors answers into a single redis hash.
type RedisGrantStore struct {
	cache *cache.RedisCache
	key   string
}

func NewRedisGrantStore(redisCache *cache.RedisCache, key string) *RedisGrantStore {
	return &RedisGrantStore{cache: redisCache, key: key}
}

func (s *RedisGrantStore) Save(ctx context.Context, kind models.PermissionKind, status models.PermissionStatus) error {
	return s.cache.HSet(ctx, s.key, string(kind), string(status))
}

func (s *RedisGrantStore) Load(ctx context.Context) (map[models.PermissionKind]models.PermissionStatus, error) {
	raw, err := s.cache.HGetAll(ctx, s.key)
	if err != nil {
		return nil, err
	}

	out := make(map[models.PermissionKind]models.PermissionStatus, len(raw))
	for kind, status := range raw {
		switch models.PermissionStatus(status) {
		case models.PermissionGranted, models.PermissionDenied:
			out[models.PermissionKind(kind)] = models.PermissionStatus(status)
		}
	}
	return out, nil
}
