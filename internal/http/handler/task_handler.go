package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// List godoc
// @Summary List tasks
// @Description Returns the loaded task snapshot, newest first.
// @Tags Tasks
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, in_progress, completed)
// @Param caseId query string false "Only tasks linked to this case"
// @Param overdue query bool false "Only overdue tasks"
// @Success 200 {object} domain.ListResponse[domain.Task]
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var q service.TaskQuery

	if s := r.URL.Query().Get("status"); s != "" {
		q.Status = domain.TaskStatus(s)
		if !q.Status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}

	caseID, err := optionalUUID(r, "caseId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.CaseID = caseID

	if raw := r.URL.Query().Get("overdue"); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid overdue")
			return
		}
		q.OverdueOnly = overdue
	}

	respondJSON(w, http.StatusOK, h.taskService.List(q))
}

// Create godoc
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.Task
// @Failure 400 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.taskService.Create(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/tasks/"+created.ID.String())
	respondJSON(w, http.StatusCreated, created)
}

// Get godoc
// @Summary Get task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} domain.Task
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	t, err := h.taskService.GetByID(id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// UpdateStatus godoc
// @Summary Change task status
// @Description Moving to completed stamps completed_at; moving away clears it.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body domain.UpdateTaskStatusRequest true "New status"
// @Success 200 {object} domain.Task
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError "Backend write failed"
// @Security BearerAuth
// @Router /tasks/{id}/status [put]
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateTaskStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.taskService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
