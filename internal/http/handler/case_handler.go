package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/kanban"
	"github.com/driftportal/facility-api/internal/service"
	"github.com/driftportal/facility-api/internal/views"
)

type CaseHandler struct {
	caseService *service.CaseService
	logger      *zap.Logger
}

func NewCaseHandler(caseService *service.CaseService, logger *zap.Logger) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
		logger:      logger,
	}
}

// List godoc
// @Summary List cases
// @Description Returns the loaded case snapshot, newest first unless a sort is given.
// @Description `dateFrom` and `dateTo` bound created_at inclusively and accept RFC 3339 or YYYY-MM-DD.
// @Description `q` matches title, description and category case-insensitively.
// @Tags Cases
// @Produce json
// @Param status query string false "Filter by status" Enums(reported, in_progress, done, closed)
// @Param priority query string false "Filter by priority" Enums(låg, normal, hög, akut)
// @Param category query string false "Filter by category" Enums(VVS, El, Lås, Värme, Ventilation, Övrigt)
// @Param dateFrom query string false "Created on or after"
// @Param dateTo query string false "Created on or before"
// @Param q query string false "Free text"
// @Param sort query string false "Sort column" Enums(title, created_at, priority, status, category)
// @Param dir query string false "Sort direction" Enums(asc, desc) default(asc)
// @Success 200 {object} domain.ListResponse[domain.Case]
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /cases [get]
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseCaseQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.caseService.List(query))
}

func parseCaseQuery(r *http.Request) (service.CaseQuery, error) {
	q := r.URL.Query()
	var out service.CaseQuery

	if s := q.Get("status"); s != "" {
		status := domain.CaseStatus(s)
		if !status.IsValid() {
			return out, errors.New("invalid status")
		}
		out.Filter.Status = status
	}
	if p := q.Get("priority"); p != "" {
		priority := domain.Priority(p)
		if !priority.IsValidForCase() {
			return out, errors.New("invalid priority")
		}
		out.Filter.Priority = priority
	}
	if c := q.Get("category"); c != "" {
		category := domain.CaseCategory(c)
		if !category.IsValid() {
			return out, errors.New("invalid category")
		}
		out.Filter.Category = category
	}

	var err error
	if out.Filter.DateFrom, err = parseDate(q.Get("dateFrom")); err != nil {
		return out, err
	}
	if out.Filter.DateTo, err = parseDate(q.Get("dateTo")); err != nil {
		return out, err
	}
	out.Filter.Query = q.Get("q")

	if s := q.Get("sort"); s != "" {
		out.Sort = views.SortField(s)
		if !out.Sort.IsValid() {
			return out, errors.New("invalid sort")
		}
		out.Dir = views.SortAsc
		if d := q.Get("dir"); d != "" {
			out.Dir = views.SortDirection(d)
			if !out.Dir.IsValid() {
				return out, errors.New("invalid dir")
			}
		}
	}
	return out, nil
}

// Create godoc
// @Summary Report a case
// @Description Creates a case with status reported. The unit, when given, must belong to the property.
// @Tags Cases
// @Accept json
// @Produce json
// @Param request body domain.CreateCaseRequest true "Case data"
// @Success 201 {object} domain.Case
// @Failure 400 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /cases [post]
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCaseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.caseService.Create(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/cases/"+created.ID.String())
	respondJSON(w, http.StatusCreated, created)
}

// Get godoc
// @Summary Get case
// @Tags Cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} domain.Case
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /cases/{id} [get]
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.caseService.GetByID(id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateStatus godoc
// @Summary Change case status
// @Description Any status may follow any other.
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param request body domain.UpdateCaseStatusRequest true "New status"
// @Success 200 {object} domain.Case
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /cases/{id}/status [put]
func (h *CaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateCaseStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.caseService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete case
// @Tags Cases
// @Param id path string true "Case ID"
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /cases/{id} [delete]
func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.caseService.Delete(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Board godoc
// @Summary Case board
// @Description Cases grouped into the four status columns in display order
// @Tags Cases
// @Produce json
// @Success 200 {object} service.BoardView
// @Security BearerAuth
// @Router /cases/board [get]
func (h *CaseHandler) Board(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.caseService.Board())
}

// Drop godoc
// @Summary Drop a card on the board
// @Description Completes a drag gesture. A status column as over_id issues exactly one status update,
// @Description even when it is the current column. An empty or unknown over_id reports outcome ignored.
// @Tags Cases
// @Accept json
// @Produce json
// @Param request body domain.BoardDropRequest true "Drop target"
// @Success 200 {object} kanban.DropResult
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Transition not allowed"
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /cases/board/drop [post]
func (h *CaseHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req domain.BoardDropRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.caseService.Drop(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if result.Outcome == kanban.OutcomeUpdated {
		h.logger.Info("case moved on board",
			zap.String("case_id", result.CaseID.String()),
			zap.String("status", string(result.Status)))
	}
	respondJSON(w, http.StatusOK, result)
}

// Tasks godoc
// @Summary Tasks linked to a case
// @Tags Cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {array} domain.Task
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /cases/{id}/tasks [get]
func (h *CaseHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	tasks, err := h.caseService.Tasks(id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}
