package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/auth"
	"github.com/tasktrail/tasktrail/internal/observability"
	"github.com/tasktrail/tasktrail/internal/orgs"
	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/tasks"
	"github.com/tasktrail/tasktrail/internal/users"
	"github.com/tasktrail/tasktrail/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	TokenManager *auth.TokenManager
	Denylist     *auth.Denylist

	AuthHandler  *auth.Handler
	TaskHandler  *tasks.Handler
	UserHandler  *users.Handler
	OrgHandler   *orgs.Handler
	RoleHandler  *rbac.Handler
	AuditHandler *audit.Handler
	JobHandler   *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with TaskTrail defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(LoginRateLimiter())
			params.AuthHandler.MountPublicRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(params.TokenManager, params.Denylist, params.Logger))
			params.AuthHandler.MountProtectedRoutes(r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticator(params.TokenManager, params.Denylist, params.Logger))

		r.Route("/tasks", params.TaskHandler.MountRoutes)
		r.Route("/users", params.UserHandler.MountRoutes)
		r.Route("/organizations", params.OrgHandler.MountRoutes)
		r.Route("/roles", params.RoleHandler.MountRoutes)
		r.Route("/audit-log", params.AuditHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
