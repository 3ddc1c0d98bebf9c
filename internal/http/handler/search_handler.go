package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/service"
	"github.com/driftportal/facility-api/internal/views"
)

type SearchHandler struct {
	searchService *service.SearchService
	logger        *zap.Logger
}

func NewSearchHandler(searchService *service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search godoc
// @Summary Search the loaded snapshots
// @Description Case-insensitive substring search over cases, tasks and maintenance plans.
// @Description Queries shorter than two characters return an empty list.
// @Tags Search
// @Produce json
// @Param q query string true "Search text"
// @Param types query string false "Comma separated result types" default(case,task,maintenance)
// @Success 200 {array} views.SearchResult
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	types := views.AllResultTypes
	if raw := r.URL.Query().Get("types"); raw != "" {
		types = nil
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				types = append(types, views.ResultType(part))
			}
		}
	}

	results, err := h.searchService.Snapshot(r.URL.Query().Get("q"), types)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Server godoc
// @Summary Search the backend
// @Description Queries the backend directly, at most five hits per collection including properties.
// @Tags Search
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} domain.ServerSearchResponse
// @Security BearerAuth
// @Router /search/server [get]
func (h *SearchHandler) Server(w http.ResponseWriter, r *http.Request) {
	resp, err := h.searchService.Server(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
