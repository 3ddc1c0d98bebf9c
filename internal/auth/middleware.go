package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
)

// Middleware attaches the session resolved by the configured provider
type Middleware struct {
	provider Provider
	logger   *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(provider Provider, logger *zap.Logger) *Middleware {
	return &Middleware{provider: provider, logger: logger}
}

// Authenticate rejects requests without a valid session
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		session, err := m.provider.AuthState(r.Context(), r)
		if err != nil {
			status := http.StatusUnauthorized
			if !isCredentialError(err) {
				status = http.StatusInternalServerError
				m.logger.Error("failed to resolve session", zap.String("path", r.URL.Path), zap.Error(err))
			} else {
				m.logger.Warn("authentication failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
			}
			writeProblem(w, status, err.Error())
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("provider", session.Provider),
			zap.String("user_id", session.UserID.String()),
			zap.Duration("auth_duration", time.Since(start)),
		)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole ensures the session has one of the roles
func (m *Middleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := FromContext(r.Context())
			if !ok {
				writeProblem(w, http.StatusForbidden, "no session")
				return
			}
			if !session.HasRole(roles...) {
				writeProblem(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isCredentialError(err error) bool {
	return errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrUnknownUser)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	errType := domain.ErrorTypeUnauthorized
	if status == http.StatusForbidden {
		errType = domain.ErrorTypeForbidden
	} else if status >= http.StatusInternalServerError {
		errType = domain.ErrorTypeInternal
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.NewAPIError(status, errType, http.StatusText(status), detail))
}
