package main

import (
	"context"
	"fmt"

	"sosapp/internal/config"
	"sosapp/internal/location"
	"sosapp/internal/permissions"
	"sosapp/internal/ports"
	"sosapp/internal/repositories/interfaces"
	"sosapp/internal/repositories/memory"
	"sosapp/internal/repositories/mongodb"
	"sosapp/pkg/cache"
	"sosapp/pkg/database"
	"sosapp/pkg/logger"
	"sosapp/pkg/maps"
	"sosapp/pkg/push"
	"sosapp/pkg/sms"
	"sosapp/pkg/storage"
)

const permissionGrantsKey = "sosapp:permissions"

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Caller:  cfg.Log.Caller,
		Colors:  cfg.App.Debug,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
}

func newRedis(ctx context.Context, cfg *config.RedisConfig) (*cache.RedisCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	return cache.NewRedisCache(ctx, &cache.RedisConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// positionSource is what both the in-memory broker and the Redis source offer.
type positionSource interface {
	ports.PositionSource
	ports.PositionPublisher
}

func newPositionSource(cfg *config.LocationConfig, redisCache *cache.RedisCache, log *logger.Logger) (positionSource, error) {
	switch cfg.Provider {
	case "", "memory":
		return location.NewBroker(), nil
	case "redis":
		if redisCache == nil {
			return nil, fmt.Errorf("location provider redis requires redis to be enabled")
		}
		return location.NewRedisSource(redisCache, cfg.Channel, cfg.CurrentKey, log), nil
	default:
		return nil, fmt.Errorf("unsupported location provider: %s", cfg.Provider)
	}
}

func newGrantStore(redisCache *cache.RedisCache) permissions.GrantStore {
	if redisCache == nil {
		return nil
	}
	return permissions.NewRedisGrantStore(redisCache, permissionGrantsKey)
}

// newMediaRepository returns the catalog and, for MongoDB, the connection so
// main can close it.
func newMediaRepository(ctx context.Context, cfg *config.Config) (interfaces.MediaRepository, *database.MongoDB, error) {
	switch cfg.Media.Catalog {
	case "", "memory":
		return memory.NewMediaRepository(), nil, nil
	case "mongo", "mongodb":
		db, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
			URI:            cfg.Database.URI,
			Database:       cfg.Database.Database,
			MaxPoolSize:    cfg.Database.MaxPoolSize,
			MinPoolSize:    cfg.Database.MinPoolSize,
			ConnectTimeout: cfg.Database.ConnectTimeout,
			SocketTimeout:  cfg.Database.SocketTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := mongodb.EnsureMediaIndexes(ctx, db.Database); err != nil {
			_ = db.Close(ctx)
			return nil, nil, err
		}
		return mongodb.NewMediaRepository(db.Database), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported media catalog: %s", cfg.Media.Catalog)
	}
}

func newStorageProvider(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "", "local":
		provider, err := storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "aws", "s3":
		provider, err := storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "gcp", "gcs":
		provider, err := storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// newSMSProvider returns nil when SMS is disabled; the dispatcher then
// reports the transport as unavailable.
func newSMSProvider(ctx context.Context, cfg *config.SMSConfig) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "twilio":
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	case "aws", "sns":
		provider, err := sms.NewAWSSNSProvider(ctx, cfg.AWS.Region, cfg.AWS.SenderID)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported sms provider: %s", cfg.Provider)
	}
}

func newPushProvider(ctx context.Context, cfg *config.PushConfig) (push.PushProvider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "fcm":
		provider, err := push.NewFCMProvider(ctx, cfg.FCM.Credentials)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "apns":
		provider, err := push.NewAPNSProvider(cfg.APNS.KeyFile, cfg.APNS.KeyID, cfg.APNS.TeamID, cfg.APNS.BundleID, cfg.APNS.Production)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported push provider: %s", cfg.Provider)
	}
}

func newGeocoder(cfg *config.MapsConfig) (maps.Geocoder, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "google":
		provider, err := maps.NewGoogleMapsProvider(cfg.GoogleMaps.APIKey)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported maps provider: %s", cfg.Provider)
	}
}
