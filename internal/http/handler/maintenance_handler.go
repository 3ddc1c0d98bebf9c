package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/service"
)

type MaintenanceHandler struct {
	maintenanceService *service.MaintenanceService
	logger             *zap.Logger
}

func NewMaintenanceHandler(maintenanceService *service.MaintenanceService, logger *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		logger:             logger,
	}
}

// List godoc
// @Summary List maintenance plans
// @Description Plans ordered by next due date. Plans without a due date come last.
// @Tags Maintenance
// @Produce json
// @Success 200 {object} domain.ListResponse[domain.MaintenancePlan]
// @Security BearerAuth
// @Router /maintenance [get]
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.maintenanceService.List())
}

// Create godoc
// @Summary Create maintenance plan
// @Description estimated_duration_hours defaults to 2 when omitted.
// @Tags Maintenance
// @Accept json
// @Produce json
// @Param request body domain.CreateMaintenancePlanRequest true "Plan data"
// @Success 201 {object} domain.MaintenancePlan
// @Failure 400 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /maintenance [post]
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMaintenancePlanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.maintenanceService.Create(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/maintenance/"+created.ID.String())
	respondJSON(w, http.StatusCreated, created)
}

// Delete godoc
// @Summary Delete maintenance plan
// @Tags Maintenance
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /maintenance/{id} [delete]
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.maintenanceService.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calendar godoc
// @Summary Maintenance calendar
// @Description The next six occurrences of every plan, projected from next_due_date by frequency
// @Tags Maintenance
// @Produce json
// @Param propertyId query string false "Only plans for this property"
// @Success 200 {array} views.CalendarEvent
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /maintenance/calendar [get]
func (h *MaintenanceHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	propertyID, err := optionalUUID(r, "propertyId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.maintenanceService.Calendar(r.Context(), propertyID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}
