package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sosapp/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, models.AccuracyHigh, cfg.Sharing.Watch.Accuracy)
	require.Equal(t, 10*time.Second, cfg.Sharing.Watch.MinInterval)
	require.InDelta(t, 20.0, cfg.Sharing.Watch.MinDistance, 1e-9)
	require.Equal(t, "https://www.google.com/maps?q=", cfg.Sharing.MapsLinkBase)
	require.Equal(t, "SOSApp", cfg.Capture.AlbumName)
	require.Equal(t, "memory", cfg.Location.Provider)
}

func TestLoad_RecipientsFromEnvKeepOrder(t *testing.T) {
	t.Setenv("SHARING_RECIPIENTS", " 03332261056, +14155550100 ,,+442071838750")
	t.Setenv("SHARING_MIN_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, []string{"03332261056", "+14155550100", "+442071838750"}, cfg.Sharing.Recipients)
	require.Equal(t, 30*time.Second, cfg.Sharing.Watch.MinInterval)
}

func TestLoad_InvalidPortIsRejected(t *testing.T) {
	t.Setenv("APP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadFile_OverlaysEnvironment(t *testing.T) {
	t.Setenv("CAPTURE_ALBUM_NAME", "FromEnv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
sharing:
  recipients: ["+15550001111", "+15550002222"]
  watch:
    min_interval: 5s
    min_distance_meters: 50
capture:
  max_duration: 2m
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Equal(t, []string{"+15550001111", "+15550002222"}, cfg.Sharing.Recipients)
	require.Equal(t, 5*time.Second, cfg.Sharing.Watch.MinInterval)
	require.InDelta(t, 50.0, cfg.Sharing.Watch.MinDistance, 1e-9)
	require.Equal(t, 2*time.Minute, cfg.Capture.MaxDuration)

	// Keys missing from the file keep their environment value.
	require.Equal(t, "FromEnv", cfg.Capture.AlbumName)
	require.Equal(t, models.AccuracyHigh, cfg.Sharing.Watch.Accuracy)
}

func TestLoadFile_RejectsEmptyAlbum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture:\n  album_name: \"  \"\n"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
}
