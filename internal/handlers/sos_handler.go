package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"sosapp/internal/models"
	"sosapp/internal/utils"
	"sosapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CaptureSession interface {
	TriggerSOS(ctx context.Context)
	BeginRecording(ctx context.Context) (<-chan models.CaptureOutcome, error)
	StopRecording(ctx context.Context)
	CloseCameraView(ctx context.Context) error
	Snapshot() models.CaptureSnapshot
}

// VideoSink receives the raw bytes of the live recording.
type VideoSink interface {
	io.Writer
	IsRecording() bool
}

type AlbumLister interface {
	AlbumAssets(ctx context.Context, name string, ttl time.Duration) ([]*models.Asset, error)
}

type SOSHandler struct {
	session CaptureSession
	video   VideoSink
	albums  AlbumLister
	logger  *logger.Logger

	albumName string
	urlTTL    time.Duration
}

type SOSHandlerOptions struct {
	AlbumName string
	URLTTL    time.Duration
}

// NewSOSHandler builds the handler. albums may be nil, which disables the
// album listing endpoint.
func NewSOSHandler(session CaptureSession, video VideoSink, albums AlbumLister, opts SOSHandlerOptions, log *logger.Logger) *SOSHandler {
	if opts.URLTTL <= 0 {
		opts.URLTTL = 15 * time.Minute
	}

	return &SOSHandler{
		session:   session,
		video:     video,
		albums:    albums,
		logger:    log.WithComponent("sos_handler"),
		albumName: opts.AlbumName,
		urlTTL:    opts.URLTTL,
	}
}

// TriggerSOS opens the camera view
func (h *SOSHandler) TriggerSOS(c *gin.Context) {
	h.session.TriggerSOS(c.Request.Context())
	utils.SuccessResponse(c, "SOS triggered", h.session.Snapshot())
}

// StartRecording starts the device recording. The saved clip is reported
// over the websocket, so the request returns as soon as recording begins.
func (h *SOSHandler) StartRecording(c *gin.Context) {
	ctx := c.Request.Context()

	outcome, err := h.session.BeginRecording(ctx)
	switch {
	case errors.Is(err, models.ErrNotOpen):
		utils.ConflictResponse(c, "Camera view is not open")
		return
	case errors.Is(err, models.ErrCameraPermission):
		utils.ForbiddenResponse(c, "Camera permission not granted")
		return
	case errors.Is(err, models.ErrDeviceBusy):
		utils.ConflictResponse(c, "Capture device is already recording")
		return
	case err != nil:
		h.logger.WithContext(ctx).WithError(err).Error("failed to start recording")
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.CodeRecordingFailed, "Failed to start recording: "+err.Error())
		return
	}

	log := h.logger.WithContext(ctx)
	go func() {
		result := <-outcome
		if result.Err != nil {
			log.WithError(result.Err).Warn("recording did not produce a saved clip")
			return
		}
		if result.Asset != nil {
			log.WithField("asset_id", result.Asset.ID).Info("recording saved")
		}
	}()

	utils.AcceptedResponse(c, "Recording started", h.session.Snapshot())
}

func (h *SOSHandler) StopRecording(c *gin.Context) {
	h.session.StopRecording(c.Request.Context())
	utils.SuccessResponse(c, "Recording stop requested", h.session.Snapshot())
}

// UploadChunk appends the request body to the live recording
func (h *SOSHandler) UploadChunk(c *gin.Context) {
	written, err := io.Copy(h.video, c.Request.Body)
	switch {
	case errors.Is(err, models.ErrNotRecording):
		utils.ConflictResponse(c, "No recording in progress")
		return
	case errors.Is(err, models.ErrRecordingLimit):
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, utils.CodeRecordingLimit, "Recording size limit reached")
		return
	case err != nil:
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("failed to write video chunk")
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.CodeRecordingFailed, "Failed to write video chunk")
		return
	}

	utils.SuccessResponse(c, "Chunk stored", gin.H{
		"bytes":     written,
		"recording": h.video.IsRecording(),
	})
}

// CloseCameraView dismisses the camera view
func (h *SOSHandler) CloseCameraView(c *gin.Context) {
	if err := h.session.CloseCameraView(c.Request.Context()); err != nil {
		if errors.Is(err, models.ErrRecordingInProgress) {
			utils.ConflictResponse(c, "Stop the recording before closing the camera")
			return
		}
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Camera view closed", h.session.Snapshot())
}

func (h *SOSHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, "Capture status retrieved", h.session.Snapshot())
}

// ListAlbum returns the saved SOS clips
func (h *SOSHandler) ListAlbum(c *gin.Context) {
	if h.albums == nil {
		utils.NotFoundResponse(c, "Album")
		return
	}

	assets, err := h.albums.AlbumAssets(c.Request.Context(), h.albumName, h.urlTTL)
	if err != nil {
		if errors.Is(err, models.ErrAlbumNotFound) {
			utils.SuccessResponse(c, "Album is empty", []*models.Asset{})
			return
		}
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("failed to list album")
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Album retrieved", assets)
}
