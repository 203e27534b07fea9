package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/repositories/interfaces"
)

// mediaRepository keeps the catalog in process memory. Used when no
// database is configured and in tests.
type mediaRepository struct {
	mu     sync.RWMutex
	assets map[string]*models.Asset
	albums map[string]*models.Album
}

func NewMediaRepository() interfaces.MediaRepository {
	return &mediaRepository{
		assets: make(map[string]*models.Asset),
		albums: make(map[string]*models.Album),
	}
}

func (r *mediaRepository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now()
	}
	cp := *asset
	r.assets[asset.ID] = &cp
	return nil
}

func (r *mediaRepository) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[id]
	if !ok {
		return nil, models.ErrAssetNotFound
	}
	cp := *asset
	return &cp, nil
}

func (r *mediaRepository) DeleteAsset(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.assets, id)
	return nil
}

func (r *mediaRepository) GetAlbumByName(ctx context.Context, name string) (*models.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, album := range r.albums {
		if album.Name == name {
			return copyAlbum(album), nil
		}
	}
	return nil, models.ErrAlbumNotFound
}

func (r *mediaRepository) CreateAlbum(ctx context.Context, album *models.Album) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.albums {
		if existing.Name == album.Name {
			return models.ErrAlbumExists
		}
	}

	now := time.Now()
	album.CreatedAt = now
	album.UpdatedAt = now
	if album.AssetIDs == nil {
		album.AssetIDs = []string{}
	}
	r.albums[album.ID] = copyAlbum(album)
	return nil
}

func (r *mediaRepository) AddAssetToAlbum(ctx context.Context, albumID, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	album, ok := r.albums[albumID]
	if !ok {
		return models.ErrAlbumNotFound
	}

	for _, id := range album.AssetIDs {
		if id == assetID {
			return nil
		}
	}
	album.AssetIDs = append(album.AssetIDs, assetID)
	album.UpdatedAt = time.Now()
	return nil
}

func (r *mediaRepository) ListAlbums(ctx context.Context) ([]*models.Album, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	albums := make([]*models.Album, 0, len(r.albums))
	for _, album := range r.albums {
		albums = append(albums, copyAlbum(album))
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].Name < albums[j].Name })
	return albums, nil
}

func (r *mediaRepository) ListAlbumAssets(ctx context.Context, albumID string) ([]*models.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	album, ok := r.albums[albumID]
	if !ok {
		return nil, models.ErrAlbumNotFound
	}

	assets := make([]*models.Asset, 0, len(album.AssetIDs))
	for _, id := range album.AssetIDs {
		if asset, ok := r.assets[id]; ok {
			cp := *asset
			assets = append(assets, &cp)
		}
	}
	return assets, nil
}

func copyAlbum(album *models.Album) *models.Album {
	cp := *album
	cp.AssetIDs = append([]string(nil), album.AssetIDs...)
	return &cp
}
