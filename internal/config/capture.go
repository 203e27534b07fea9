package config

import (
	"os"
	"path/filepath"
	"time"
)

type CaptureConfig struct {
	AlbumName         string        `yaml:"album_name"`
	RecordingDir      string        `yaml:"recording_dir"`
	ContentType       string        `yaml:"content_type"`
	MaxDuration       time.Duration `yaml:"max_duration"`
	MaxBytes          int64         `yaml:"max_bytes"`
	PermissionTimeout time.Duration `yaml:"permission_timeout"`
}

type MediaConfig struct {
	Catalog       string `yaml:"catalog"` // mongo, memory
	KeyPrefix     string `yaml:"key_prefix"`
	KeepLocalCopy bool   `yaml:"keep_local_copy"`
}

func loadCaptureConfig() *CaptureConfig {
	return &CaptureConfig{
		AlbumName:         getEnv("CAPTURE_ALBUM_NAME", "SOSApp"),
		RecordingDir:      getEnv("CAPTURE_RECORDING_DIR", filepath.Join(os.TempDir(), "sosapp-recordings")),
		ContentType:       getEnv("CAPTURE_CONTENT_TYPE", "video/mp4"),
		MaxDuration:       getEnvAsDuration("CAPTURE_MAX_DURATION", 10*time.Minute),
		MaxBytes:          getEnvAsInt64("CAPTURE_MAX_BYTES", 512<<20),
		PermissionTimeout: getEnvAsDuration("PERMISSION_PROMPT_TIMEOUT", 60*time.Second),
	}
}

func loadMediaConfig() *MediaConfig {
	return &MediaConfig{
		Catalog:       getEnv("MEDIA_CATALOG", "memory"),
		KeyPrefix:     getEnv("MEDIA_KEY_PREFIX", "sos"),
		KeepLocalCopy: getEnvAsBool("MEDIA_KEEP_LOCAL_COPY", false),
	}
}
