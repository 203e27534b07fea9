package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sosapp/internal/models"
)

func TestMediaRepository_AlbumLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMediaRepository()

	_, err := repo.GetAlbumByName(ctx, "SOSApp")
	require.ErrorIs(t, err, models.ErrAlbumNotFound)

	require.NoError(t, repo.CreateAsset(ctx, &models.Asset{ID: "a1"}))
	require.NoError(t, repo.CreateAsset(ctx, &models.Asset{ID: "a2"}))

	album := &models.Album{ID: "album-1", Name: "SOSApp", AssetIDs: []string{"a1"}}
	require.NoError(t, repo.CreateAlbum(ctx, album))
	require.ErrorIs(t, repo.CreateAlbum(ctx, &models.Album{ID: "album-2", Name: "SOSApp"}), models.ErrAlbumExists)

	require.NoError(t, repo.AddAssetToAlbum(ctx, "album-1", "a2"))
	require.NoError(t, repo.AddAssetToAlbum(ctx, "album-1", "a2"))
	require.ErrorIs(t, repo.AddAssetToAlbum(ctx, "missing", "a2"), models.ErrAlbumNotFound)

	got, err := repo.GetAlbumByName(ctx, "SOSApp")
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "a2"}, got.AssetIDs)

	assets, err := repo.ListAlbumAssets(ctx, "album-1")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	require.Equal(t, "a1", assets[0].ID)

	albums, err := repo.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 1)
}

func TestMediaRepository_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMediaRepository()

	require.NoError(t, repo.CreateAlbum(ctx, &models.Album{ID: "x", Name: "SOSApp"}))

	got, err := repo.GetAlbumByName(ctx, "SOSApp")
	require.NoError(t, err)
	got.AssetIDs = append(got.AssetIDs, "sneaky")

	again, err := repo.GetAlbumByName(ctx, "SOSApp")
	require.NoError(t, err)
	require.Empty(t, again.AssetIDs)
}

func TestMediaRepository_Assets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMediaRepository()

	_, err := repo.GetAsset(ctx, "nope")
	require.ErrorIs(t, err, models.ErrAssetNotFound)

	require.NoError(t, repo.CreateAsset(ctx, &models.Asset{ID: "a1", Key: "sos/a1.mp4"}))
	asset, err := repo.GetAsset(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "sos/a1.mp4", asset.Key)
	require.False(t, asset.CreatedAt.IsZero())

	require.NoError(t, repo.DeleteAsset(ctx, "a1"))
	_, err = repo.GetAsset(ctx, "a1")
	require.ErrorIs(t, err, models.ErrAssetNotFound)
}
