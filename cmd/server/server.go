package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"sosapp/internal/capture"
	"sosapp/internal/config"
	"sosapp/internal/handlers"
	"sosapp/internal/media"
	"sosapp/internal/models"
	"sosapp/internal/permissions"
	"sosapp/internal/recorder"
	"sosapp/internal/services"
	"sosapp/internal/sharing"
	"sosapp/pkg/cache"
	"sosapp/pkg/database"
	"sosapp/pkg/logger"
	"sosapp/pkg/storage"
	"sosapp/pkg/websocket"
	"sosapp/routes"

	"github.com/gin-gonic/gin"
)

// loadConfig prefers the flag, then CONFIG_FILE, then the environment alone.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// infrastructure holds the clients run opened and must close on every exit path.
type infrastructure struct {
	redis   *cache.RedisCache
	mongo   *database.MongoDB
	storage storage.StorageProvider
	logger  *logger.Logger
}

func (i *infrastructure) Close() {
	if closer, ok := i.storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			i.logger.WithError(err).Warn("Failed to close storage client")
		}
	}
	if i.mongo != nil {
		if err := i.mongo.Close(context.Background()); err != nil {
			i.logger.WithError(err).Warn("Failed to close mongodb")
		}
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			i.logger.WithError(err).Warn("Failed to close redis")
		}
	}
}

// startHub runs the device hub until stop is called. It does not follow the
// signal context: shutdown notifications and alerts still have to reach the
// device after the signal arrives.
func startHub(log *logger.Logger) (hub *websocket.Hub, stop func()) {
	hubCtx, cancel := context.WithCancel(context.Background())
	hub = websocket.NewHub(log)
	go hub.Run(hubCtx)
	return hub, cancel
}

// run serves until ctx is canceled or the listener fails.
func run(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Infrastructure
	infra := &infrastructure{logger: appLogger}
	defer infra.Close()

	redisCache, err := newRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	infra.redis = redisCache

	positions, err := newPositionSource(cfg.Location, redisCache, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize position source: %w", err)
	}

	mediaRepo, mongoDB, err := newMediaRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize media catalog: %w", err)
	}
	infra.mongo = mongoDB

	blobStorage, err := newStorageProvider(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage provider: %w", err)
	}
	infra.storage = blobStorage

	smsProvider, err := newSMSProvider(ctx, cfg.SMS)
	if err != nil {
		return fmt.Errorf("failed to initialize sms provider: %w", err)
	}

	pushProvider, err := newPushProvider(ctx, cfg.Push)
	if err != nil {
		return fmt.Errorf("failed to initialize push provider: %w", err)
	}

	geocoder, err := newGeocoder(cfg.Maps)
	if err != nil {
		return fmt.Errorf("failed to initialize maps provider: %w", err)
	}

	// Device channel
	hub, stopHub := startHub(appLogger)
	defer stopHub()

	registry := permissions.NewRegistry(services.NewPrompter(hub), newGrantStore(redisCache), cfg.Capture.PermissionTimeout, appLogger)
	if err := registry.Restore(ctx); err != nil {
		appLogger.WithError(err).Warn("Failed to restore permission grants")
	}

	// Services
	dispatcher := services.NewSMSDispatcher(smsProvider, appLogger)
	notifier := services.NewNotifier(hub, pushProvider, registry, services.NotifierOptions{
		DeviceToken: cfg.Push.DeviceToken,
		Title:       cfg.Push.Title,
	}, appLogger)
	alerter := services.NewAlerter(hub, appLogger)

	sharingSession := sharing.NewSession(positions, dispatcher, notifier, registry, sharing.Options{
		Recipients:   cfg.Sharing.Recipients,
		Watch:        cfg.Sharing.Watch,
		MapsLinkBase: cfg.Sharing.MapsLinkBase,
	}, appLogger)

	videoRecorder := recorder.NewFileRecorder(recorder.Options{
		Dir:         cfg.Capture.RecordingDir,
		ContentType: cfg.Capture.ContentType,
		MaxDuration: cfg.Capture.MaxDuration,
		MaxBytes:    cfg.Capture.MaxBytes,
	}, appLogger)

	library := media.NewLibrary(blobStorage, mediaRepo, registry, media.Options{
		KeyPrefix:     cfg.Media.KeyPrefix,
		KeepLocalCopy: cfg.Media.KeepLocalCopy,
	}, appLogger)

	captureSession := capture.NewSession(videoRecorder, library, alerter, notifier, registry, capture.Options{
		AlbumName: cfg.Capture.AlbumName,
	}, appLogger)

	inbound := services.NewDeviceInbound(positions, registry, videoRecorder, appLogger)

	// Handlers
	healthChecks := map[string]handlers.HealthCheck{}
	if redisCache != nil {
		healthChecks["redis"] = redisCache.Ping
	}
	if mongoDB != nil {
		healthChecks["mongodb"] = mongoDB.Ping
	}

	var galleryDir string
	if blobStorage.Name() == "local" {
		galleryDir = cfg.Storage.Local.BasePath
	}

	router := routes.NewRouter(&routes.Handlers{
		Health:     handlers.NewHealthHandler(cfg.App.Version, healthChecks, hub.ClientCount),
		Location:   handlers.NewLocationHandler(positions, registry, geocoder, cfg.Sharing.MapsLinkBase, appLogger),
		Sharing:    handlers.NewSharingHandler(sharingSession, appLogger),
		SOS:        handlers.NewSOSHandler(captureSession, videoRecorder, library, handlers.SOSHandlerOptions{AlbumName: cfg.Capture.AlbumName}, appLogger),
		Permission: handlers.NewPermissionHandler(registry, appLogger),
		WebSocket: websocket.NewHandler(hub, inbound, websocket.Config{
			ReadBufferSize:   cfg.WebSocket.ReadBufferSize,
			WriteBufferSize:  cfg.WebSocket.WriteBufferSize,
			HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
			MaxMessageSize:   cfg.WebSocket.MaxMessageSize,
			AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		}, appLogger),
		GalleryDir: galleryDir,
	}, cfg.WebSocket.Path, appLogger)

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.WithFields(map[string]interface{}{
			"addr":        server.Addr,
			"environment": cfg.App.Environment,
			"recipients":  len(cfg.Sharing.Recipients),
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received")
	case err := <-serveErr:
		appLogger.WithError(err).Error("HTTP server failed")
		runErr = fmt.Errorf("http server: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("HTTP server shutdown failed")
	}

	if sharingSession.Snapshot().State == models.SharingStateActive {
		sharingSession.Stop(shutdownCtx)
	}
	captureSession.StopRecording(shutdownCtx)

	waitOrTimeout(shutdownCtx, func() {
		sharingSession.Wait()
		captureSession.Wait()
		notifier.Wait()
	})

	stopHub()

	appLogger.Info("Server stopped")
	return runErr
}

// waitOrTimeout runs wait and gives up once ctx is done.
func waitOrTimeout(ctx context.Context, wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}
