package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/auth"
	"github.com/driftportal/facility-api/internal/config"
	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/http/handler"
	"github.com/driftportal/facility-api/internal/http/middleware"

	_ "github.com/driftportal/facility-api/docs" // Import swagger docs
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Directory   *handler.DirectoryHandler
	Cases       *handler.CaseHandler
	Comments    *handler.CommentHandler
	Tasks       *handler.TaskHandler
	Maintenance *handler.MaintenanceHandler
	Dashboard   *handler.DashboardHandler
	Search      *handler.SearchHandler
	Changes     *handler.ChangesHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	h              Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		h:              handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", rt.h.Health.Live)
	r.Get("/health/ready", rt.h.Health.Ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	canDelete := rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByUser)

		// Long-lived stream, no request timeout
		r.Get("/changes", rt.h.Changes.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(rt.cfg.Server.RequestTimeoutDuration()))

			// Auth
			r.Get("/auth/me", rt.h.Auth.Me)
			r.Get("/capabilities", rt.h.Auth.Capabilities)

			// Reference data
			r.Route("/properties", func(r chi.Router) {
				r.Get("/", rt.h.Directory.ListProperties)
				r.Get("/{id}", rt.h.Directory.GetProperty)
				r.Get("/{id}/units", rt.h.Directory.ListPropertyUnits)
			})
			r.Get("/units", rt.h.Directory.ListUnits)
			r.Get("/users", rt.h.Directory.ListUsers)

			// Cases
			r.Route("/cases", func(r chi.Router) {
				r.Get("/", rt.h.Cases.List)
				r.Post("/", rt.h.Cases.Create)
				r.Get("/board", rt.h.Cases.Board)
				r.Post("/board/drop", rt.h.Cases.Drop)
				r.Get("/{id}", rt.h.Cases.Get)
				r.Put("/{id}/status", rt.h.Cases.UpdateStatus)
				r.With(canDelete).Delete("/{id}", rt.h.Cases.Delete)
				r.Get("/{id}/tasks", rt.h.Cases.Tasks)
				r.Get("/{id}/comments", rt.h.Comments.List)
				r.Post("/{id}/comments", rt.h.Comments.Create)
			})

			// Tasks
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", rt.h.Tasks.List)
				r.Post("/", rt.h.Tasks.Create)
				r.Get("/{id}", rt.h.Tasks.Get)
				r.Put("/{id}/status", rt.h.Tasks.UpdateStatus)
			})

			// Maintenance plans
			r.Route("/maintenance", func(r chi.Router) {
				r.Get("/", rt.h.Maintenance.List)
				r.Post("/", rt.h.Maintenance.Create)
				r.Get("/calendar", rt.h.Maintenance.Calendar)
				r.With(canDelete).Delete("/{id}", rt.h.Maintenance.Delete)
			})

			// Dashboard & Search
			r.Get("/dashboard/kpis", rt.h.Dashboard.KPIs)
			r.Get("/dashboard/kpis/{kind}", rt.h.Dashboard.KPIDetail)
			r.Get("/dashboard/charts", rt.h.Dashboard.Charts)
			r.Get("/search", rt.h.Search.Search)
			r.Get("/search/server", rt.h.Search.Server)
		})
	})

	return r
}
