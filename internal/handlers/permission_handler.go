package handlers

import (
	"context"

	"sosapp/internal/models"
	"sosapp/internal/utils"
	"sosapp/internal/validators"
	"sosapp/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PermissionStore interface {
	Set(ctx context.Context, kind models.PermissionKind, granted bool) error
	Statuses() map[models.PermissionKind]models.PermissionStatus
}

type PermissionHandler struct {
	permissions PermissionStore
	logger      *logger.Logger
}

type SetPermissionRequest struct {
	Kind    models.PermissionKind `json:"-" validate:"permission_kind"`
	Granted *bool                 `json:"granted" binding:"required"`
}

func NewPermissionHandler(permissions PermissionStore, log *logger.Logger) *PermissionHandler {
	return &PermissionHandler{
		permissions: permissions,
		logger:      log.WithComponent("permission_handler"),
	}
}

// SetPermission records the user's answer for one permission kind
func (h *PermissionHandler) SetPermission(c *gin.Context) {
	request := SetPermissionRequest{Kind: models.PermissionKind(c.Param("kind"))}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, map[string]string{
			"kind": utils.ErrInvalidPermissionKind,
		})
		return
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.permissions.Set(c.Request.Context(), request.Kind, *request.Granted); err != nil {
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("failed to set permission")
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.SuccessResponse(c, "Permission updated", h.permissions.Statuses())
}

func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	utils.SuccessResponse(c, "Permissions retrieved", h.permissions.Statuses())
}
