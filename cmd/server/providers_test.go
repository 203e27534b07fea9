package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sosapp/internal/config"
	"sosapp/internal/location"
	"sosapp/pkg/logger"
)

func TestNewPositionSource(t *testing.T) {
	t.Parallel()

	source, err := newPositionSource(&config.LocationConfig{Provider: "memory"}, nil, logger.NewNop())
	require.NoError(t, err)
	require.IsType(t, &location.Broker{}, source)

	_, err = newPositionSource(&config.LocationConfig{Provider: "redis"}, nil, logger.NewNop())
	require.Error(t, err)

	_, err = newPositionSource(&config.LocationConfig{Provider: "carrier-pigeon"}, nil, logger.NewNop())
	require.Error(t, err)
}

func TestDisabledProvidersAreNil(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	smsProvider, err := newSMSProvider(ctx, &config.SMSConfig{Provider: "none"})
	require.NoError(t, err)
	require.Nil(t, smsProvider)

	pushProvider, err := newPushProvider(ctx, &config.PushConfig{Provider: "none"})
	require.NoError(t, err)
	require.Nil(t, pushProvider)

	geocoder, err := newGeocoder(&config.MapsConfig{Provider: "none"})
	require.NoError(t, err)
	require.Nil(t, geocoder)

	require.Nil(t, newGrantStore(nil))

	_, err = newSMSProvider(ctx, &config.SMSConfig{Provider: "pager"})
	require.Error(t, err)
}

func TestNewMediaRepository_Memory(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Media: &config.MediaConfig{Catalog: "memory"}}
	repo, db, err := newMediaRepository(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, repo)
	require.Nil(t, db)
}

func TestNewStorageProvider_Local(t *testing.T) {
	t.Parallel()

	provider, err := newStorageProvider(context.Background(), &config.StorageConfig{
		Provider: "local",
		Local:    &config.LocalStorageConfig{BasePath: t.TempDir(), BaseURL: "http://localhost:8080/media"},
	})
	require.NoError(t, err)
	require.Equal(t, "local", provider.Name())
}
