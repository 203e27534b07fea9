package handlers

import (
	"context"
	"errors"
	"net/http"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/internal/sharing"
	"sosapp/internal/utils"
	"sosapp/internal/validators"
	"sosapp/pkg/logger"
	"sosapp/pkg/maps"

	"github.com/gin-gonic/gin"
)

// Positions is the read/write side of the position source the handler needs.
type Positions interface {
	Current(ctx context.Context) (models.Coordinate, error)
	Publish(ctx context.Context, coord models.Coordinate) error
}

type LocationHandler struct {
	positions   Positions
	permissions ports.Permissions
	geocoder    maps.Geocoder
	logger      *logger.Logger

	mapsLinkBase string
}

type CurrentLocationResponse struct {
	Coordinate models.Coordinate `json:"coordinate"`
	Address    string            `json:"address,omitempty"`
	MapURL     string            `json:"map_url"`
}

type ReportLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required" validate:"latitude"`
	Longitude *float64 `json:"longitude" binding:"required" validate:"longitude"`
}

// NewLocationHandler builds the handler. geocoder may be nil, in which case
// responses carry no address.
func NewLocationHandler(positions Positions, permissions ports.Permissions, geocoder maps.Geocoder, mapsLinkBase string, log *logger.Logger) *LocationHandler {
	return &LocationHandler{
		positions:    positions,
		permissions:  permissions,
		geocoder:     geocoder,
		logger:       log.WithComponent("location_handler"),
		mapsLinkBase: mapsLinkBase,
	}
}

// GetCurrentLocation returns the latest fix for the map view
func (h *LocationHandler) GetCurrentLocation(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.permissions.Granted(ctx, models.PermissionLocation) {
		granted, err := h.permissions.Request(ctx, models.PermissionLocation)
		if err != nil || !granted {
			utils.ForbiddenResponse(c, utils.ErrLocationPermission)
			return
		}
	}

	coord, err := h.positions.Current(ctx)
	if err != nil {
		if errors.Is(err, models.ErrPositionUnavailable) {
			utils.ErrorResponse(c, http.StatusNotFound, utils.CodeNotFound, utils.ErrLocationUnavailable)
			return
		}
		h.logger.WithContext(ctx).WithError(err).Error("failed to read current position")
		utils.InternalServerErrorResponse(c)
		return
	}

	response := CurrentLocationResponse{
		Coordinate: coord,
		MapURL:     sharing.MapLink(h.mapsLinkBase, coord),
	}

	if h.geocoder != nil {
		geocoded, err := h.geocoder.ReverseGeocode(ctx, coord.Latitude, coord.Longitude)
		if err != nil {
			h.logger.WithContext(ctx).WithError(err).
				WithField("provider", h.geocoder.Name()).
				Warn("reverse geocoding failed")
		} else {
			response.Address = geocoded.BestAddress()
		}
	}

	utils.SuccessResponse(c, "Current location retrieved", response)
}

// ReportLocation accepts a fix from the device
func (h *LocationHandler) ReportLocation(c *gin.Context) {
	var request ReportLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	coord := models.Coordinate{Latitude: *request.Latitude, Longitude: *request.Longitude}

	if err := h.positions.Publish(c.Request.Context(), coord); err != nil {
		h.logger.WithContext(c.Request.Context()).WithError(err).Error("failed to publish position")
		utils.InternalServerErrorResponse(c)
		return
	}

	utils.AcceptedResponse(c, "Location received", coord)
}
