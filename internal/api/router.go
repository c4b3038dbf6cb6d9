package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/irmock-api/internal/api/middleware"
	"github.com/phrazzld/irmock-api/internal/api/shared"
)

// Public paths served without authentication.
const (
	HealthPath      = "/health"
	MetricsPath     = "/metrics"
	MockCatalogPath = "/mock-catalog-items"
)

// NotFoundDetail is the body detail of responses to unmatched routes.
const NotFoundDetail = "Not Found"

// RouterConfig holds the handlers and middleware dependencies of the router.
type RouterConfig struct {
	Tasks         *TaskHandler
	Catalog       *CatalogHandler
	Submissions   *SubmissionHandler
	Authenticator apiMiddleware.Authenticator
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter creates the application router with all routes and middleware.
// Authentication runs before route matching, so every non-public path,
// known or not, answers 401 without a valid credential.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	public := []string{HealthPath, MockCatalogPath}
	if cfg.Metrics != nil {
		public = append(public, MetricsPath)
	}
	authMiddleware := apiMiddleware.NewAuthMiddleware(cfg.Authenticator, public...)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(log))
	r.Use(middleware.Recoverer)
	r.Use(authMiddleware.Authenticate)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithDetail(w, r, http.StatusNotFound, NotFoundDetail)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithDetail(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, MetricsPath, cfg.Metrics)
	}

	r.Get("/tasks", cfg.Tasks.ListTasks)
	r.Post("/tasks/{task_uuid}/images", cfg.Submissions.UploadImages)
	r.Get("/tasks/{task_uuid}/results/{submission_id}", cfg.Submissions.GetResult)

	r.Route("/v2", func(r chi.Router) {
		r.Get("/catalog-items", cfg.Catalog.ListCatalogItems)
		r.Get("/image-recognition/tasks", cfg.Tasks.ListAllTasks)
		r.Post("/image-recognition/tasks/{task_uuid}/images", cfg.Submissions.SubmitImage)
		r.Get("/image-recognition/tasks/{task_uuid}/images/{submission_id}", cfg.Submissions.GetResult)
	})

	r.Get(MockCatalogPath, cfg.Catalog.ListMockCatalogItems)

	return r
}
