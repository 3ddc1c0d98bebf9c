package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/service"
)

// DirectoryHandler serves the read-only reference data: properties, units and users
type DirectoryHandler struct {
	directoryService *service.DirectoryService
	logger           *zap.Logger
}

func NewDirectoryHandler(directoryService *service.DirectoryService, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		directoryService: directoryService,
		logger:           logger,
	}
}

// ListProperties godoc
// @Summary List properties
// @Tags Directory
// @Produce json
// @Success 200 {array} domain.Property
// @Security BearerAuth
// @Router /properties [get]
func (h *DirectoryHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.directoryService.ListProperties(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, properties)
}

// GetProperty godoc
// @Summary Get property
// @Tags Directory
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} domain.Property
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /properties/{id} [get]
func (h *DirectoryHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	property, err := h.directoryService.GetProperty(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, property)
}

// ListPropertyUnits godoc
// @Summary Units of a property
// @Tags Directory
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {array} domain.Unit
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /properties/{id}/units [get]
func (h *DirectoryHandler) ListPropertyUnits(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.directoryService.GetProperty(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	units, err := h.directoryService.ListUnits(r.Context(), &id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, units)
}

// ListUnits godoc
// @Summary List units
// @Tags Directory
// @Produce json
// @Param propertyId query string false "Only units of this property"
// @Success 200 {array} domain.Unit
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /units [get]
func (h *DirectoryHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	propertyID, err := optionalUUID(r, "propertyId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	units, err := h.directoryService.ListUnits(r.Context(), propertyID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, units)
}

// ListUsers godoc
// @Summary List users
// @Tags Directory
// @Produce json
// @Success 200 {array} domain.User
// @Security BearerAuth
// @Router /users [get]
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.directoryService.ListUsers(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
