package interfaces

import (
	"context"

	"sosapp/internal/models"
)

// MediaRepository is the catalog of saved clips and the albums holding them.
type MediaRepository interface {
	// Assets
	CreateAsset(ctx context.Context, asset *models.Asset) error
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id string) error

	// Albums
	GetAlbumByName(ctx context.Context, name string) (*models.Album, error)
	CreateAlbum(ctx context.Context, album *models.Album) error
	AddAssetToAlbum(ctx context.Context, albumID, assetID string) error
	ListAlbums(ctx context.Context) ([]*models.Album, error)
	ListAlbumAssets(ctx context.Context, albumID string) ([]*models.Asset, error)
}
