package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditdb "github.com/mrlokans/bookshelf/internal/database/audit"
	catalogdb "github.com/mrlokans/bookshelf/internal/database/catalog"
	"github.com/mrlokans/bookshelf/internal/flash"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/readonly"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/security"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App is the catalog wired to its database. The server and the CLI
// commands share it.
type App struct {
	DB      *database.Database
	Audit   *audit.Service
	Catalog *services.CatalogService
}

// NewApp opens the catalog database and wires the catalog service with
// audit logging.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	auditService := audit.NewService(auditdb.NewRepository(db.DB))
	catalogService := services.NewCatalogService(catalogdb.NewRepository(db.DB), auditService, time.Now)

	return &App{
		DB:      db,
		Audit:   auditService,
		Catalog: catalogService,
	}, nil
}

// Close waits for pending audit writes and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	return a.DB.Close()
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// kill (no param) default sends syscall.SIGTERM, kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}

func Run(cfg *config.Config, version string) error {
	log.Info().Str("version", version).Msg("Starting Bookshelf")

	if schedule := cfg.Audit.CleanupSchedule; schedule != "" {
		if err := scheduler.ValidateSchedule(schedule); err != nil {
			return fmt.Errorf("invalid AUDIT_CLEANUP_SCHEDULE %q: %w", schedule, err)
		}
	}

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Flash messages live in the catalog database
	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	flashManager, err := flash.NewManager(sqlDB, cfg.Session.Lifetime, cfg.Session.SecureCookies)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}
	defer flashManager.Close()

	csrfSecret, generated, err := security.ResolveSecret(cfg.Session.Secret)
	if err != nil {
		return fmt.Errorf("failed to resolve session secret: %w", err)
	}
	if generated {
		log.Warn().Msg("Generated session secret (set SESSION_SECRET to persist)")
	}

	if cfg.Global.ReadOnly {
		log.Info().Msg("Read-only mode enabled - write operations will be blocked")
	}
	readOnly := readonly.NewMiddleware(cfg.Global.ReadOnly, func(c *gin.Context, message string) {
		flashManager.Add(c.Request.Context(), flash.CategoryWarning, message)
	})

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(app.Audit))

		taskCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		taskCtxCancel = cancel
		go taskClient.Start(taskCtx)
	}

	cleanupScheduler := scheduler.NewAuditCleanupScheduler(
		cfg.Audit.CleanupSchedule,
		AuditCleanupJob(taskClient, app.Audit, cfg.Audit.RetentionDays),
	)
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		return err
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:            app.Catalog,
		Database:           app.DB,
		AuditReader:        app.Audit,
		FlashManager:       flashManager,
		CSRFSecret:         csrfSecret,
		SecureCookies:      cfg.Session.SecureCookies,
		ReadOnly:           readOnly,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		TemplatesPath:      cfg.UI.TemplatesPath,
		StaticPath:         cfg.UI.StaticPath,
		Version:            version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		cleanupScheduler.Stop()
		return fmt.Errorf("failed to create router: %w", err)
	}

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, onShutdown)
}

// AuditCleanupJob enqueues an audit cleanup task when the task queue is
// available and otherwise cleans up inline.
func AuditCleanupJob(client *tasks.Client, cleaner tasks.AuditEventCleaner, retentionDays int) scheduler.Job {
	return func(ctx context.Context) error {
		if client == nil {
			_, err := tasks.CleanupAuditEvents(ctx, cleaner, retentionDays)
			return err
		}

		ids, err := client.Add(tasks.CleanupAuditEventsTask{RetentionDays: retentionDays}).Ctx(ctx).Save()
		if err != nil {
			return fmt.Errorf("enqueue audit cleanup: %w", err)
		}
		log.Debug().Strs("task_ids", ids).Msg("Audit cleanup enqueued")
		return nil
	}
}
