package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crewdesk/crewdesk/internal/auth"
	"github.com/crewdesk/crewdesk/internal/authz"
	"github.com/crewdesk/crewdesk/internal/gateway"
	"github.com/crewdesk/crewdesk/internal/observability"
	"github.com/crewdesk/crewdesk/internal/platform/httpx"
	"github.com/crewdesk/crewdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Guard              authz.Guard
	AuthHandler        *auth.Handler
	PermissionsHandler *authz.PermissionsHandler
	Proxy              *gateway.Proxy
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Crewdesk defaults.
func NewRouter(params RouterParams, stack MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(stack) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Authenticated landing destination: the place forbidden navigations
	// are sent back to.
	r.Group(func(r chi.Router) {
		r.Use(params.Guard.RequireAuthenticated())
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			principal := authz.PrincipalFromContext(r.Context())
			httpx.JSON(w, http.StatusOK, map[string]any{
				"principal":    principal,
				"capabilities": params.Guard.Resolver.CapabilitySet(r.Context()),
				"destinations": gateway.Destinations(),
			})
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/permissions", params.PermissionsHandler.MountRoutes)

	if params.Proxy != nil {
		params.Proxy.MountRoutes(r, params.Guard)
	}

	if params.JobHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireCapability(authz.CapManageUsers))
			r.Route("/jobs", params.JobHandler.MountRoutes)
		})
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
