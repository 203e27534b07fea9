package handlers

import (
	"context"
	"errors"
	"net/http"

	"sosapp/internal/models"
	"sosapp/internal/utils"
	"sosapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SharingSession interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
	Snapshot() models.SharingSnapshot
}

type SharingHandler struct {
	session SharingSession
	logger  *logger.Logger
}

func NewSharingHandler(session SharingSession, log *logger.Logger) *SharingHandler {
	return &SharingHandler{
		session: session,
		logger:  log.WithComponent("sharing_handler"),
	}
}

// StartSharing begins live location sharing
func (h *SharingHandler) StartSharing(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.session.Start(ctx); err != nil {
		if errors.Is(err, models.ErrPermissionDenied) {
			utils.ForbiddenResponse(c, utils.ErrLocationPermission)
			return
		}
		h.logger.WithContext(ctx).WithError(err).Error("failed to start location sharing")
		utils.ErrorResponse(c, http.StatusInternalServerError, utils.CodeSharingFailed, "Failed to start location sharing: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Live location sharing started", h.session.Snapshot())
}

// StopSharing ends live location sharing
func (h *SharingHandler) StopSharing(c *gin.Context) {
	h.session.Stop(c.Request.Context())
	utils.SuccessResponse(c, "Live location sharing stopped", h.session.Snapshot())
}

func (h *SharingHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, "Sharing status retrieved", h.session.Snapshot())
}
