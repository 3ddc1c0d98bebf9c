package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/auth"
	"github.com/driftportal/facility-api/internal/capability"
	"github.com/driftportal/facility-api/internal/domain"
)

type AuthHandler struct {
	caps   *capability.Set
	logger *zap.Logger
}

func NewAuthHandler(caps *capability.Set, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		caps:   caps,
		logger: logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the session of the caller. dev_bypass is true when authentication is disabled.
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.SessionResponse
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "no session")
		return
	}
	respondJSON(w, http.StatusOK, session.Response())
}

// Capabilities godoc
// @Summary Optional backend features
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.CapabilitiesResponse
// @Security BearerAuth
// @Router /capabilities [get]
func (h *AuthHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, domain.CapabilitiesResponse{
		CaseComments: h.caps.CaseComments(),
	})
}
