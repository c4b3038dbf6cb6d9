package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/phrazzld/irmock-api/internal/api"
	"github.com/phrazzld/irmock-api/internal/auth"
	"github.com/phrazzld/irmock-api/internal/config"
	"github.com/phrazzld/irmock-api/internal/events"
	"github.com/phrazzld/irmock-api/internal/platform/fixture"
	"github.com/phrazzld/irmock-api/internal/platform/metrics"
	"github.com/phrazzld/irmock-api/internal/platform/postgres"
	"github.com/phrazzld/irmock-api/internal/platform/snapshot"
	"github.com/phrazzld/irmock-api/internal/platform/webhook"
	"github.com/phrazzld/irmock-api/internal/service"
	"github.com/phrazzld/irmock-api/internal/store"
	"github.com/phrazzld/irmock-api/internal/task"
)

// application holds the shared dependencies so they can be released in
// order on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil unless the postgres backend is selected
	db          *sql.DB
	submissions store.SubmissionStore
	metrics     *metrics.Metrics

	emitter  *events.InMemoryEventEmitter
	callback *webhook.CallbackHandler

	queue       *task.TaskQueue
	pool        *task.WorkerPool
	scheduler   *task.Scheduler
	completions *task.CompletionScheduler

	router http.Handler
}

// newApplication creates an application with all dependencies initialized
// and the worker pool running. On error, anything already started is
// released before returning.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *application, err error) {
	app = &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	defer func() {
		if err != nil {
			app.cleanup()
			app = nil
		}
	}()

	registry, err := fixture.LoadTaskRegistry(
		filepath.Join(cfg.Storage.FixturesDir, cfg.Storage.TasksFile), logger)
	if err != nil {
		return app, fmt.Errorf("failed to load tasks: %w", err)
	}
	catalog, err := fixture.LoadCatalog(
		filepath.Join(cfg.Storage.FixturesDir, cfg.Storage.CatalogFile), logger)
	if err != nil {
		return app, fmt.Errorf("failed to load catalog: %w", err)
	}

	if err := app.openSubmissionStore(ctx); err != nil {
		return app, err
	}

	// Callbacks are delivered off the completion path.
	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.callback = webhook.NewCallbackHandler(
		webhook.NewClient(cfg.Processing.CallbackTimeout),
		app.metrics,
		cfg.Processing.CallbackTimeout,
		logger,
	)
	app.emitter.RegisterHandler(app.callback)

	app.queue = task.NewTaskQueue(cfg.Processing.QueueSize, logger)
	app.pool = task.NewWorkerPool(app.queue, task.WorkerPoolConfig{WorkerCount: cfg.Processing.WorkerCount}, logger)
	app.pool.Start()
	app.scheduler = task.NewScheduler(app.queue, app.metrics, logger)

	factory, err := task.NewCompletionTaskFactory(
		app.submissions,
		task.NewSyntheticGenerator(cfg.Processing.ResultItems),
		app.emitter,
		app.metrics,
		logger,
	)
	if err != nil {
		return app, fmt.Errorf("failed to create completion task factory: %w", err)
	}
	app.completions = task.NewCompletionScheduler(app.scheduler, factory, task.CompletionConfig{
		Delay:   cfg.Processing.CompletionDelay,
		Stagger: cfg.Processing.StaggerInterval,
	}, logger)

	if cfg.Processing.RecoverPending {
		n, err := app.completions.Recover(ctx, app.submissions)
		if err != nil {
			return app, fmt.Errorf("failed to recover pending submissions: %w", err)
		}
		logger.Info("pending submissions re-armed", "count", n)
	}

	if err := app.setupRouter(registry, catalog); err != nil {
		return app, err
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// openSubmissionStore selects the configured submission backend.
func (app *application) openSubmissionStore(ctx context.Context) error {
	cfg := app.config

	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		app.submissions = postgres.NewPostgresSubmissionStore(db, app.logger)

	default:
		st, err := snapshot.Open(cfg.Storage.SnapshotPath, app.logger)
		if err != nil {
			return fmt.Errorf("failed to open submission snapshot: %w", err)
		}
		app.submissions = st
	}

	app.logger.Info("submission store ready", "backend", cfg.Storage.Backend)
	return nil
}

// setupRouter builds the services and handlers on top of the stores.
func (app *application) setupRouter(registry store.TaskRegistry, catalog store.CatalogStore) error {
	cfg := app.config

	taskService, err := service.NewTaskService(registry,
		cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	catalogService, err := service.NewCatalogService(catalog)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}
	submissionService, err := service.NewSubmissionService(
		registry, app.submissions, app.completions, app.metrics, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create submission service: %w", err)
	}

	authenticator, err := auth.NewAuthenticator(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize authentication: %w", err)
	}

	var metricsHandler http.Handler
	if cfg.Server.MetricsEnabled {
		metricsHandler = app.metrics.Handler()
	}

	app.router = api.NewRouter(api.RouterConfig{
		Tasks:         api.NewTaskHandler(taskService, app.logger),
		Catalog:       api.NewCatalogHandler(catalogService),
		Submissions:   api.NewSubmissionHandler(submissionService, cfg.Server.MaxUploadBytes, app.logger),
		Authenticator: authenticator,
		Metrics:       metricsHandler,
		Logger:        app.logger,
	})
	return nil
}

// cleanup releases resources in dependency order. Timers stop first so that
// nothing new reaches the queue once it is closed.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.queue != nil {
		app.queue.Close()
	}
	if app.pool != nil {
		app.pool.Stop()
	}
	if app.callback != nil {
		app.callback.Wait()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
