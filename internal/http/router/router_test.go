package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/auth"
	"github.com/driftportal/facility-api/internal/capability"
	"github.com/driftportal/facility-api/internal/config"
	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/fixture"
	"github.com/driftportal/facility-api/internal/http/handler"
	"github.com/driftportal/facility-api/internal/http/middleware"
	"github.com/driftportal/facility-api/internal/realtime"
	"github.com/driftportal/facility-api/internal/repository/memory"
	"github.com/driftportal/facility-api/internal/service"
	"github.com/driftportal/facility-api/internal/store"
)

// roleProvider authenticates requests carrying any Authorization header as role
type roleProvider struct {
	role domain.Role
}

func (p roleProvider) Name() string { return "test" }

func (p roleProvider) AuthState(ctx context.Context, r *http.Request) (*auth.Session, error) {
	if r.Header.Get("Authorization") == "" {
		return nil, auth.ErrMissingCredentials
	}
	return &auth.Session{UserID: fixture.UserID, Role: p.role, Provider: p.Name()}, nil
}

func newTestRouter(t *testing.T, role domain.Role) http.Handler {
	t.Helper()
	log := zap.NewNop()
	hub := realtime.NewHub(log)
	t.Cleanup(hub.Close)

	src := memory.NewSource(fixture.Demo(time.Now()), hub)
	stores := store.NewStores(src, log)
	require.True(t, stores.RefreshAll(context.Background()))
	caps := capability.Static(true)

	cfg := &config.Config{
		App:       config.AppConfig{Environment: "test"},
		Server:    config.ServerConfig{RequestTimeout: 30, EnableSwagger: true},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	handlers := Handlers{
		Health:      handler.NewHealthHandler(src, stores, log),
		Auth:        handler.NewAuthHandler(caps, log),
		Directory:   handler.NewDirectoryHandler(service.NewDirectoryService(src.Properties, src.Units, src.Users), log),
		Cases:       handler.NewCaseHandler(service.NewCaseService(stores.Cases, stores.Tasks, src.Properties, src.Units, nil, log), log),
		Comments:    handler.NewCommentHandler(service.NewCommentService(src.Comments, caps, log), log),
		Tasks:       handler.NewTaskHandler(service.NewTaskService(stores.Tasks, stores.Cases, log), log),
		Maintenance: handler.NewMaintenanceHandler(service.NewMaintenanceService(stores.Plans, src.Properties, log), log),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(stores), log),
		Search:      handler.NewSearchHandler(service.NewSearchService(stores, src), log),
		Changes:     handler.NewChangesHandler(hub, log),
	}

	rt := NewRouter(cfg, log,
		auth.NewMiddleware(roleProvider{role: role}, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handlers,
	)
	return rt.Setup()
}

func call(h http.Handler, method, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer test")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthIsPublic(t *testing.T) {
	h := newTestRouter(t, domain.RoleAdmin)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/health", false).Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/health/ready", false).Code)
}

func TestRouter_APIRequiresAuth(t *testing.T) {
	h := newTestRouter(t, domain.RoleAdmin)

	rec := call(h, http.MethodGet, "/api/v1/cases", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	rec = call(h, http.MethodGet, "/api/v1/cases", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_DeleteRequiresRole(t *testing.T) {
	caretaker := newTestRouter(t, domain.RoleCaretaker)
	rec := call(caretaker, http.MethodDelete, "/api/v1/cases/"+fixture.Case1ID.String(), true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = call(caretaker, http.MethodDelete, "/api/v1/maintenance/"+fixture.PlanID.String(), true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	manager := newTestRouter(t, domain.RoleManager)
	rec = call(manager, http.MethodDelete, "/api/v1/cases/"+fixture.Case1ID.String(), true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_BoardRouteIsNotAnID(t *testing.T) {
	h := newTestRouter(t, domain.RoleCaretaker)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/api/v1/cases/board", true).Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/api/v1/maintenance/calendar", true).Code)
}

func TestRouter_Swagger(t *testing.T) {
	h := newTestRouter(t, domain.RoleAdmin)

	rec := call(h, http.MethodGet, "/swagger/doc.json", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Facility API")
}
