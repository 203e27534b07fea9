package models

import "time"

type CaptureState string

const (
	CaptureStateClosed    CaptureState = "closed"
	CaptureStateOpen      CaptureState = "open"
	CaptureStateRecording CaptureState = "recording"
)

// FileHandle references a finished recording on local disk.
type FileHandle struct {
	ID          string        `json:"id"`
	Path        string        `json:"path"`
	ContentType string        `json:"content_type"`
	Size        int64         `json:"size"`
	Duration    time.Duration `json:"duration"`
}

type CapturedAsset struct {
	File      FileHandle `json:"file"`
	AlbumName string     `json:"album_name"`
}

// RecordingResult resolves a StartRecording call once the device stops.
type RecordingResult struct {
	File FileHandle
	Err  error
}

// CaptureOutcome resolves a BeginRecording call once the clip has been
// persisted or the attempt has failed.
type CaptureOutcome struct {
	Asset *Asset
	Err   error
}

type Asset struct {
	ID          string    `json:"id" bson:"_id"`
	Key         string    `json:"key" bson:"key"`
	URL         string    `json:"url" bson:"url"`
	ContentType string    `json:"content_type" bson:"content_type"`
	Size        int64     `json:"size" bson:"size"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type Album struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	AssetIDs  []string  `json:"asset_ids" bson:"asset_ids"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type CaptureSnapshot struct {
	State     CaptureState `json:"state"`
	AlbumName string       `json:"album_name"`
}
