package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
)

// Session is the authenticated caller of one request
type Session struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	Role      domain.Role
	Provider  string
	DevBypass bool
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession adds the session to the context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext extracts the session from the context
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}

// MustFromContext extracts the session or panics
func MustFromContext(ctx context.Context) *Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session not found in context")
	}
	return s
}

// HasRole checks if the session has one of the roles
func (s *Session) HasRole(roles ...domain.Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// Response converts the session to its API shape
func (s *Session) Response() domain.SessionResponse {
	return domain.SessionResponse{
		UserID:    s.UserID,
		Name:      s.Name,
		Email:     s.Email,
		Role:      s.Role,
		Provider:  s.Provider,
		DevBypass: s.DevBypass,
	}
}
