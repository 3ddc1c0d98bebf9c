package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
	"github.com/driftportal/facility-api/internal/store"
)

const readyTimeout = 3 * time.Second

type HealthHandler struct {
	src    *repository.Source
	stores *store.Stores
	logger *zap.Logger
}

func NewHealthHandler(src *repository.Source, stores *store.Stores, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{src: src, stores: stores, logger: logger}
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse("ok", h.src.Name, nil))
}

// Ready godoc
// @Summary Readiness probe
// @Description Ready once the backend answers and every live store has completed its first load.
// @Tags Health
// @Produce json
// @Success 200 {object} domain.HealthResponse
// @Failure 503 {object} domain.HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	healthy := true

	if h.src.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		err := h.src.Ping(ctx)
		cancel()
		if err != nil {
			h.logger.Error("backend health check failed", zap.Error(err))
			checks["backend"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["backend"] = "healthy"
		}
	}

	for name, loaded := range map[string]bool{
		h.stores.Cases.Name(): h.stores.Cases.Loaded(),
		h.stores.Tasks.Name(): h.stores.Tasks.Loaded(),
		h.stores.Plans.Name(): h.stores.Plans.Loaded(),
	} {
		if loaded {
			checks[name] = "loaded"
		} else {
			checks[name] = "loading"
			healthy = false
		}
	}

	if !healthy {
		respondJSON(w, http.StatusServiceUnavailable, healthResponse("unhealthy", h.src.Name, checks))
		return
	}
	respondJSON(w, http.StatusOK, healthResponse("healthy", h.src.Name, checks))
}

func healthResponse(status, source string, checks map[string]string) domain.HealthResponse {
	return domain.HealthResponse{Status: status, DataSource: source, Checks: checks}
}
