package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/internal/repositories/interfaces"
	"sosapp/pkg/logger"
	"sosapp/pkg/storage"
)

type Options struct {
	KeyPrefix     string
	KeepLocalCopy bool
}

// Library is the gallery: clip bytes go to object storage, the asset and
// album bookkeeping goes to the media repository.
type Library struct {
	storage     storage.StorageProvider
	repo        interfaces.MediaRepository
	permissions ports.Permissions
	opts        Options
	logger      *logger.Logger
	now         func() time.Time
}

var _ ports.AssetStore = (*Library)(nil)

func NewLibrary(store storage.StorageProvider, repo interfaces.MediaRepository, permissions ports.Permissions, opts Options, log *logger.Logger) *Library {
	return &Library{
		storage:     store,
		repo:        repo,
		permissions: permissions,
		opts:        opts,
		logger:      log.WithComponent("media_library").WithField("storage", store.Name()),
		now:         time.Now,
	}
}

func (l *Library) HasPermission(ctx context.Context) bool {
	return l.permissions.Granted(ctx, models.PermissionMediaLibrary)
}

func (l *Library) RequestPermission(ctx context.Context) (bool, error) {
	return l.permissions.Request(ctx, models.PermissionMediaLibrary)
}

// CreateAsset uploads the clip and records it in the catalog. When the
// catalog write fails the upload is rolled back.
func (l *Library) CreateAsset(ctx context.Context, file models.FileHandle) (*models.Asset, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	id := file.ID
	if id == "" {
		id = uuid.New().String()
	}

	createdAt := l.now().UTC()
	key := path.Join(l.opts.KeyPrefix, createdAt.Format("2006/01/02"), id+filepath.Ext(file.Path))

	resp, err := l.storage.Upload(ctx, &storage.UploadRequest{
		Key:         key,
		Reader:      f,
		ContentType: file.ContentType,
		Size:        file.Size,
		Metadata: map[string]string{
			"recording-id": id,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store clip: %w", err)
	}

	asset := &models.Asset{
		ID:          id,
		Key:         resp.Key,
		URL:         resp.URL,
		ContentType: file.ContentType,
		Size:        resp.Size,
		CreatedAt:   createdAt,
	}

	if err := l.repo.CreateAsset(ctx, asset); err != nil {
		if delErr := l.storage.Delete(ctx, resp.Key); delErr != nil {
			l.logger.WithError(delErr).WithField("key", resp.Key).Warn("Failed to roll back uploaded clip")
		}
		return nil, err
	}

	if !l.opts.KeepLocalCopy {
		if err := os.Remove(file.Path); err != nil {
			l.logger.WithError(err).WithField("path", file.Path).Warn("Failed to remove local recording")
		}
	}

	l.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"asset_id": asset.ID,
		"key":      asset.Key,
		"size":     asset.Size,
	}).Info("Asset created")

	return asset, nil
}

// GetAlbum returns (nil, nil) when no album has that name.
func (l *Library) GetAlbum(ctx context.Context, name string) (*models.Album, error) {
	album, err := l.repo.GetAlbumByName(ctx, name)
	if errors.Is(err, models.ErrAlbumNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return album, nil
}

func (l *Library) CreateAlbum(ctx context.Context, name string, initial *models.Asset) (*models.Album, error) {
	album := &models.Album{
		ID:   uuid.New().String(),
		Name: name,
	}
	if initial != nil {
		album.AssetIDs = []string{initial.ID}
	}

	if err := l.repo.CreateAlbum(ctx, album); err != nil {
		return nil, err
	}

	l.logger.WithContext(ctx).WithField("album", name).Info("Album created")
	return album, nil
}

func (l *Library) AddToAlbum(ctx context.Context, asset *models.Asset, album *models.Album) error {
	return l.repo.AddAssetToAlbum(ctx, album.ID, asset.ID)
}

// AlbumAssets lists the album's clips with URLs valid for ttl.
func (l *Library) AlbumAssets(ctx context.Context, name string, ttl time.Duration) ([]*models.Asset, error) {
	album, err := l.repo.GetAlbumByName(ctx, name)
	if err != nil {
		return nil, err
	}

	assets, err := l.repo.ListAlbumAssets(ctx, album.ID)
	if err != nil {
		return nil, err
	}

	for _, asset := range assets {
		url, err := l.storage.GetURL(ctx, asset.Key, ttl)
		if err != nil {
			l.logger.WithError(err).WithField("key", asset.Key).Warn("Failed to sign asset URL")
			continue
		}
		asset.URL = url
	}

	return assets, nil
}
