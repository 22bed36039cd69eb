package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/crewdesk/crewdesk/internal/platform/httpx"
)

// Guard gates access to protected destinations before their handlers run.
// Browser navigations are redirected the way the dashboard expects: missing
// session to the login page, missing capability to the dashboard landing
// page. API calls receive problem responses instead, since redirecting a
// fetch would be invisible to the frontend.
type Guard struct {
	Resolver Resolver
	Logger   *slog.Logger

	// LoginPath is where unauthenticated navigations land. Defaults to
	// /auth/login. The originally requested path is discarded.
	LoginPath string
	// DashboardPath is where forbidden navigations land. Defaults to /.
	DashboardPath string
}

// RequireAuthenticated admits any authenticated principal.
func (g Guard) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFromContext(r.Context()) == nil {
				g.denyUnauthenticated(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability admits principals whose role grants the capability. The
// decision is made fresh on every request from the live principal.
func (g Guard) RequireCapability(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				g.denyUnauthenticated(w, r)
				return
			}
			if !g.Resolver.Can(r.Context(), c) {
				if g.Logger != nil {
					g.Logger.Info("navigation forbidden",
						slog.String("path", r.URL.Path),
						slog.String("role", string(p.Role)),
						slog.String("capability", string(c)))
				}
				g.denyForbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g Guard) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, g.loginPath(), http.StatusSeeOther)
		return
	}
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
}

func (g Guard) denyForbidden(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, g.dashboardPath(), http.StatusSeeOther)
		return
	}
	httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing required capability")
}

func (g Guard) loginPath() string {
	if g.LoginPath != "" {
		return g.LoginPath
	}
	return "/auth/login"
}

func (g Guard) dashboardPath() string {
	if g.DashboardPath != "" {
		return g.DashboardPath
	}
	return "/"
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
