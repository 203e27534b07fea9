package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mediaRepository struct {
	assets *mongo.Collection
	albums *mongo.Collection
}

func NewMediaRepository(db *mongo.Database) interfaces.MediaRepository {
	return &mediaRepository{
		assets: db.Collection("assets"),
		albums: db.Collection("albums"),
	}
}

// EnsureMediaIndexes creates the indexes the media catalog relies on. The
// unique album name index is what keeps concurrent album creation from
// producing duplicates.
func EnsureMediaIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("albums").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("album_name_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create album index: %w", err)
	}

	_, err = db.Collection("assets").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("asset_created_at"),
	})
	if err != nil {
		return fmt.Errorf("failed to create asset index: %w", err)
	}

	return nil
}

// Assets
func (r *mediaRepository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now()
	}

	if _, err := r.assets.InsertOne(ctx, asset); err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	return nil
}

func (r *mediaRepository) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := r.assets.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

func (r *mediaRepository) DeleteAsset(ctx context.Context, id string) error {
	if _, err := r.assets.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// Albums
func (r *mediaRepository) GetAlbumByName(ctx context.Context, name string) (*models.Album, error) {
	var album models.Album
	err := r.albums.FindOne(ctx, bson.M{"name": name}).Decode(&album)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrAlbumNotFound
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}

	return &album, nil
}

func (r *mediaRepository) CreateAlbum(ctx context.Context, album *models.Album) error {
	now := time.Now()
	album.CreatedAt = now
	album.UpdatedAt = now
	if album.AssetIDs == nil {
		album.AssetIDs = []string{}
	}

	if _, err := r.albums.InsertOne(ctx, album); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlbumExists
		}
		return fmt.Errorf("failed to create album: %w", err)
	}

	return nil
}

func (r *mediaRepository) AddAssetToAlbum(ctx context.Context, albumID, assetID string) error {
	result, err := r.albums.UpdateOne(
		ctx,
		bson.M{"_id": albumID},
		bson.M{
			"$addToSet": bson.M{"asset_ids": assetID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add asset to album: %w", err)
	}

	if result.MatchedCount == 0 {
		return models.ErrAlbumNotFound
	}

	return nil
}

func (r *mediaRepository) ListAlbums(ctx context.Context) ([]*models.Album, error) {
	cursor, err := r.albums.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer cursor.Close(ctx)

	var albums []*models.Album
	for cursor.Next(ctx) {
		var album models.Album
		if err := cursor.Decode(&album); err != nil {
			return nil, fmt.Errorf("failed to decode album: %w", err)
		}
		albums = append(albums, &album)
	}

	return albums, cursor.Err()
}

func (r *mediaRepository) ListAlbumAssets(ctx context.Context, albumID string) ([]*models.Asset, error) {
	var album models.Album
	if err := r.albums.FindOne(ctx, bson.M{"_id": albumID}).Decode(&album); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrAlbumNotFound
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}

	if len(album.AssetIDs) == 0 {
		return []*models.Asset{}, nil
	}

	cursor, err := r.assets.Find(ctx, bson.M{"_id": bson.M{"$in": album.AssetIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find album assets: %w", err)
	}
	defer cursor.Close(ctx)

	byID := make(map[string]*models.Asset, len(album.AssetIDs))
	for cursor.Next(ctx) {
		var asset models.Asset
		if err := cursor.Decode(&asset); err != nil {
			return nil, fmt.Errorf("failed to decode asset: %w", err)
		}
		byID[asset.ID] = &asset
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate album assets: %w", err)
	}

	// keep album order
	assets := make([]*models.Asset, 0, len(byID))
	for _, id := range album.AssetIDs {
		if asset, ok := byID[id]; ok {
			assets = append(assets, asset)
		}
	}

	return assets, nil
}
