package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/fixture"
	"github.com/driftportal/facility-api/internal/repository/memory"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(sub uuid.UUID) Claims {
	return Claims{
		Email: "token@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func newJWTProvider() *JWTProvider {
	src := memory.NewSource(fixture.Demo(time.Now()), nil)
	return NewJWTProvider(JWTConfig{Secret: testSecret, Audience: "authenticated"}, src.Users)
}

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestJWTProvider_ValidToken(t *testing.T) {
	p := newJWTProvider()
	req := requestWithToken(signToken(t, testSecret, validClaims(fixture.UserID)))

	session, err := p.AuthState(req.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, fixture.UserID, session.UserID)
	assert.Equal(t, "Demo Användare", session.Name)
	assert.Equal(t, domain.RoleManager, session.Role)
	assert.Equal(t, "jwt", session.Provider)
	assert.False(t, session.DevBypass)
}

func TestJWTProvider_Rejections(t *testing.T) {
	p := newJWTProvider()

	expired := validClaims(fixture.UserID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAudience := validClaims(fixture.UserID)
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	badSubject := validClaims(fixture.UserID)
	badSubject.Subject = "not-a-uuid"

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing header", "", ErrMissingCredentials},
		{"garbage", "abc.def.ghi", ErrInvalidToken},
		{"wrong secret", signToken(t, "another-secret-another-secret-123", validClaims(fixture.UserID)), ErrInvalidToken},
		{"expired", signToken(t, testSecret, expired), ErrExpiredToken},
		{"wrong audience", signToken(t, testSecret, wrongAudience), ErrInvalidToken},
		{"bad subject", signToken(t, testSecret, badSubject), ErrInvalidToken},
		{"unknown user", signToken(t, testSecret, validClaims(uuid.New())), ErrUnknownUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithToken(tt.token)
			_, err := p.AuthState(req.Context(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTProvider_MalformedHeader(t *testing.T) {
	p := newJWTProvider()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, err := p.AuthState(req.Context(), req)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFixtureProvider(t *testing.T) {
	p := NewFixtureProvider()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	session, err := p.AuthState(req.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "Dev User", session.Name)
	assert.Equal(t, domain.RoleAdmin, session.Role)
	assert.True(t, session.DevBypass)

	// callers get their own copy
	session.Name = "changed"
	again, _ := p.AuthState(req.Context(), req)
	assert.Equal(t, "Dev User", again.Name)
}

func TestMiddleware_Authenticate(t *testing.T) {
	mw := NewMiddleware(newJWTProvider(), zap.NewNop())
	var seen *Session
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = MustFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithToken(""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var problem domain.APIError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&problem))
	assert.Equal(t, domain.ErrorTypeUnauthorized, problem.Type)
	assert.Nil(t, seen)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithToken(signToken(t, testSecret, validClaims(fixture.UserID))))
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, seen)
	assert.Equal(t, fixture.UserID, seen.UserID)
}

func TestMiddleware_RequireRole(t *testing.T) {
	mw := NewMiddleware(NewFixtureProvider(), zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	admin := mw.Authenticate(mw.RequireRole(domain.RoleAdmin)(ok))
	rr := httptest.NewRecorder()
	admin.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	caretaker := mw.Authenticate(mw.RequireRole(domain.RoleCaretaker)(ok))
	rr = httptest.NewRecorder()
	caretaker.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	bare := mw.RequireRole(domain.RoleAdmin)(ok)
	rr = httptest.NewRecorder()
	bare.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
