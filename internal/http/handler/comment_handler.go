package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService *service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// List godoc
// @Summary List case comments
// @Description supported is false when the backend has no comment table; comments is then empty.
// @Tags Cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} domain.CommentsResponse
// @Security BearerAuth
// @Router /cases/{id}/comments [get]
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	resp, err := h.commentService.List(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Create godoc
// @Summary Comment on a case
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param request body domain.CreateCaseCommentRequest true "Comment"
// @Success 201 {object} domain.CaseComment
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 501 {object} domain.APIError "Comments unsupported by backend"
// @Security BearerAuth
// @Router /cases/{id}/comments [post]
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.CreateCaseCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comment, err := h.commentService.Create(r.Context(), id, &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}
