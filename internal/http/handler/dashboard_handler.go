package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/service"
	"github.com/driftportal/facility-api/internal/views"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// KPIs godoc
// @Summary Dashboard KPIs
// @Description Counters derived from the loaded snapshots.
// @Description
// @Description - `open_cases`: cases that are not done or closed
// @Description - `overdue_tasks`: tasks past due_date that are not completed
// @Description - `completed_this_week`: tasks completed Monday 00:00 through Sunday 23:59:59.999, server local time
// @Tags Dashboard
// @Produce json
// @Success 200 {object} views.KPIs
// @Security BearerAuth
// @Router /dashboard/kpis [get]
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dashboardService.KPIs())
}

// KPIDetail godoc
// @Summary Rows behind a KPI
// @Tags Dashboard
// @Produce json
// @Param kind path string true "KPI" Enums(openCases, overdueTasks, completedThisWeek)
// @Success 200 {object} views.KPIRows
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /dashboard/kpis/{kind} [get]
func (h *DashboardHandler) KPIDetail(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboardService.KPIDetail(views.KPIKind(chi.URLParam(r, "kind")))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// Charts godoc
// @Summary Dashboard charts
// @Description Cases per ISO week, status distribution and average handling time in days
// @Tags Dashboard
// @Produce json
// @Success 200 {object} views.Charts
// @Security BearerAuth
// @Router /dashboard/charts [get]
func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dashboardService.Charts())
}
