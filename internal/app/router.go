package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bizdir/bizdir/internal/applications"
	"github.com/bizdir/bizdir/internal/auth"
	"github.com/bizdir/bizdir/internal/blog"
	"github.com/bizdir/bizdir/internal/chat"
	"github.com/bizdir/bizdir/internal/directory"
	"github.com/bizdir/bizdir/internal/dispatch"
	"github.com/bizdir/bizdir/internal/observability"
	"github.com/bizdir/bizdir/internal/realestate"
	"github.com/bizdir/bizdir/internal/servicelistings"
	"github.com/bizdir/bizdir/internal/shared"
	"github.com/bizdir/bizdir/internal/users"
	"github.com/bizdir/bizdir/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler         *auth.Handler
	BlogHandler         *blog.Handler
	ChatHandler         *chat.Handler
	DirectoryHandler    *directory.Handler
	ApplicationsHandler *applications.Handler
	RealEstateHandler   *realestate.Handler
	ServicesHandler     *servicelistings.Handler
	UsersHandler        *users.Handler
	JobHandler          *jobs.Handler
}

// NewRouter constructs the chi.Router with bizdir defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.BlogHandler != nil {
		r.Route("/blog", params.BlogHandler.MountRoutes)
	}
	if params.ChatHandler != nil {
		r.Route("/chat", params.ChatHandler.MountRoutes)
	}
	if params.DirectoryHandler != nil {
		r.Route("/directory", params.DirectoryHandler.MountRoutes)
	}
	if params.ApplicationsHandler != nil {
		r.Route("/jobs", params.ApplicationsHandler.MountRoutes)
	}
	if params.RealEstateHandler != nil {
		r.Route("/real-estate", params.RealEstateHandler.MountRoutes)
	}
	if params.ServicesHandler != nil {
		r.Route("/services", params.ServicesHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/admin", params.JobHandler.MountRoutes)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		dispatch.Write(w, dispatch.Failure(shared.NotFound("route", r.URL.Path)))
	})
	// A known path with an unrouted method is an unknown route: the
	// envelope has no kind for 405.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		dispatch.Write(w, dispatch.Failure(shared.NotFound("route", r.Method+" "+r.URL.Path)))
	})

	return r
}
