package routes

import (
	"sosapp/internal/handlers"
	"sosapp/internal/middleware"
	"sosapp/pkg/logger"
	"sosapp/pkg/websocket"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Location   *handlers.LocationHandler
	Sharing    *handlers.SharingHandler
	SOS        *handlers.SOSHandler
	Permission *handlers.PermissionHandler
	WebSocket  *websocket.Handler

	// GalleryDir, when set, is served read-only under /gallery.
	GalleryDir string
}

// NewRouter builds the engine with the global middleware and every route.
func NewRouter(h *Handlers, wsPath string, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))

	router.GET("/health", h.Health.Health)

	if wsPath == "" {
		wsPath = "/ws"
	}
	router.GET(wsPath, h.WebSocket.HandleWebSocket)

	if h.GalleryDir != "" {
		router.Static("/gallery", h.GalleryDir)
	}

	v1 := router.Group("/api/v1")
	{
		SetupLocationRoutes(v1, h.Location)
		SetupPermissionRoutes(v1, h.Permission)
		SetupSharingRoutes(v1, h.Sharing)
		SetupSOSRoutes(v1, h.SOS)
	}

	return router
}

func SetupLocationRoutes(r *gin.RouterGroup, locationHandler *handlers.LocationHandler) {
	location := r.Group("/location")
	{
		location.GET("/current", locationHandler.GetCurrentLocation)
		location.POST("", locationHandler.ReportLocation)
	}
}

func SetupPermissionRoutes(r *gin.RouterGroup, permissionHandler *handlers.PermissionHandler) {
	permissions := r.Group("/permissions")
	{
		permissions.GET("", permissionHandler.ListPermissions)
		permissions.POST("/:kind", permissionHandler.SetPermission)
	}
}

// SetupSharingRoutes sets up live location sharing routes
func SetupSharingRoutes(r *gin.RouterGroup, sharingHandler *handlers.SharingHandler) {
	sharing := r.Group("/sharing")
	{
		sharing.GET("", sharingHandler.GetStatus)
		sharing.POST("/start", sharingHandler.StartSharing)
		sharing.POST("/stop", sharingHandler.StopSharing)
	}
}

// SetupSOSRoutes sets up the SOS camera and recording routes
func SetupSOSRoutes(r *gin.RouterGroup, sosHandler *handlers.SOSHandler) {
	sos := r.Group("/sos")
	{
		sos.GET("", sosHandler.GetStatus)
		sos.POST("", sosHandler.TriggerSOS)
		sos.POST("/close", sosHandler.CloseCameraView)
		sos.GET("/album", sosHandler.ListAlbum)

		recording := sos.Group("/recording")
		recording.POST("/start", sosHandler.StartRecording)
		recording.POST("/stop", sosHandler.StopRecording)
		recording.PUT("/chunks", sosHandler.UploadChunk)
	}
}
