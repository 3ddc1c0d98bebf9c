package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/driftportal/facility-api/docs"
	"github.com/driftportal/facility-api/internal/auth"
	"github.com/driftportal/facility-api/internal/capability"
	"github.com/driftportal/facility-api/internal/config"
	"github.com/driftportal/facility-api/internal/database"
	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/fixture"
	"github.com/driftportal/facility-api/internal/http/handler"
	"github.com/driftportal/facility-api/internal/http/middleware"
	"github.com/driftportal/facility-api/internal/http/router"
	"github.com/driftportal/facility-api/internal/jobs"
	"github.com/driftportal/facility-api/internal/kanban"
	"github.com/driftportal/facility-api/internal/livesync"
	"github.com/driftportal/facility-api/internal/logger"
	"github.com/driftportal/facility-api/internal/realtime"
	"github.com/driftportal/facility-api/internal/repository"
	"github.com/driftportal/facility-api/internal/repository/gormrepo"
	"github.com/driftportal/facility-api/internal/repository/memory"
	"github.com/driftportal/facility-api/internal/service"
	"github.com/driftportal/facility-api/internal/store"
)

// @title Facility API
// @version 1.0
// @description Facility management API for cases, work orders and maintenance plans with live updates
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@driftportal.se

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	switch basicCfg.App.Environment {
	case "staging", "production":
		if host := os.Getenv("PUBLIC_HOST"); host != "" {
			docs.SwaggerInfo.Host = host
		}
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In staging/production secrets may come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	hub := realtime.NewHub(log.Named("realtime"))
	defer hub.Close()

	// Data source: in-memory fixtures or the configured database
	var (
		src  *repository.Source
		db   *gorm.DB
		caps *capability.Set
	)
	if cfg.Data.UseFixtures {
		src = memory.NewSource(fixture.Demo(time.Now()), hub)
		caps = capability.Static(true)
		log.Info("Serving fixture data")
	} else {
		db, err = database.NewDatabase(&cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Warn("Error closing database", zap.Error(err))
			}
		}()

		if cfg.Database.Driver == config.DriverSQLite {
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
		}
		src = gormrepo.NewSource(db, cfg.Database.Driver)
		caps = capability.Detect(ctx, src.Comments, log)
	}

	// Change notifications from PostgreSQL feed the hub
	listenerDone := make(chan struct{})
	if cfg.Sync.Enabled && db != nil && cfg.Database.Driver == config.DriverPostgres {
		listener := realtime.NewPostgresListener(cfg.Database.ConnectionString(), domain.Tables, hub,
			realtime.ListenerConfig{
				MinReconnectInterval: cfg.Sync.MinReconnectDuration(),
				MaxReconnectInterval: cfg.Sync.MaxReconnectDuration(),
				PingInterval:         cfg.Sync.PingDuration(),
			}, log.Named("pglistener"))
		go func() {
			defer close(listenerDone)
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Change listener stopped", zap.Error(err))
			}
		}()
	} else {
		close(listenerDone)
	}

	stores := store.NewStores(src, log.Named("store"))
	targets := []jobs.Refreshable{stores.Cases, stores.Tasks, stores.Plans}

	// Live sync binds each store to its table's change events and loads it
	var bindings livesync.Group
	if cfg.Sync.Enabled {
		bindings.Add(ctx, hub, domain.TableCases, stores.Cases, log)
		bindings.Add(ctx, hub, domain.TableTasks, stores.Tasks, log)
		bindings.Add(ctx, hub, domain.TableMaintenancePlans, stores.Plans, log)
	}
	defer bindings.Close()

	// Auth
	var provider auth.Provider
	if cfg.Auth.DevBypass {
		log.Warn("Authentication bypass enabled, all requests run as the fixture admin")
		provider = auth.NewFixtureProvider()
	} else {
		provider = auth.NewJWTProvider(auth.JWTConfig{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		}, src.Users)
	}
	authMiddleware := auth.NewMiddleware(provider, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Services
	policy := kanban.PolicyByName(cfg.Auth.TransitionPolicy)
	caseService := service.NewCaseService(stores.Cases, stores.Tasks, src.Properties, src.Units, policy, log)
	taskService := service.NewTaskService(stores.Tasks, stores.Cases, log)
	maintenanceService := service.NewMaintenanceService(stores.Plans, src.Properties, log)
	commentService := service.NewCommentService(src.Comments, caps, log)
	directoryService := service.NewDirectoryService(src.Properties, src.Units, src.Users)
	dashboardService := service.NewDashboardService(stores)
	searchService := service.NewSearchService(stores, src)

	rt := router.NewRouter(cfg, log, authMiddleware, rateLimiter, router.Handlers{
		Health:      handler.NewHealthHandler(src, stores, log),
		Auth:        handler.NewAuthHandler(caps, log),
		Directory:   handler.NewDirectoryHandler(directoryService, log),
		Cases:       handler.NewCaseHandler(caseService, log),
		Comments:    handler.NewCommentHandler(commentService, log),
		Tasks:       handler.NewTaskHandler(taskService, log),
		Maintenance: handler.NewMaintenanceHandler(maintenanceService, log),
		Dashboard:   handler.NewDashboardHandler(dashboardService, log),
		Search:      handler.NewSearchHandler(searchService, log),
		Changes:     handler.NewChangesHandler(hub, log),
	})

	// Periodic resync bounds staleness when notifications are lost. Without
	// live sync the startup load is the only initial fetch.
	var scheduler *jobs.Scheduler
	if cfg.Jobs.ResyncEnabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterResyncJob(
			scheduler,
			targets,
			log,
			cfg.Jobs.ResyncSchedule,
			cfg.Jobs.ResyncTimeoutDuration(),
			!cfg.Sync.Enabled,
		); err != nil {
			log.Error("Failed to register resync job", zap.Error(err))
			scheduler = nil
		} else {
			scheduler.Start()
			log.Info("Scheduler started with resync job",
				zap.String("cron_expr", cfg.Jobs.ResyncSchedule),
				zap.Duration("timeout", cfg.Jobs.ResyncTimeoutDuration()),
			)
		}
	} else if !cfg.Sync.Enabled {
		go jobs.NewResyncJob(targets, cfg.Jobs.ResyncTimeoutDuration(), log).RunStartupLoad()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("data_source", src.Name),
			zap.Bool("case_comments", caps.CaseComments()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Ending the change streams first lets Shutdown drain
		cancel()
		hub.Close()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		<-listenerDone
		log.Info("Server stopped gracefully")
	}

	return nil
}
