package gateway

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewdesk/crewdesk/internal/authz"
	"github.com/crewdesk/crewdesk/internal/platform/httpx"
	"github.com/crewdesk/crewdesk/internal/session"
)

var errUpstreamUnavailable = errors.New("gateway: upstream unavailable")

// hop-by-hop headers per RFC 7230 §6.1 stay between proxy and upstream.
var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		if _, hop := hopByHopHeaders[http.CanonicalHeaderKey(key)]; hop {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// Destination maps a dashboard section onto the upstream API. The required
// capability gates navigation into the section; per-action checks (create,
// edit, delete) remain the upstream's responsibility.
type Destination struct {
	Name         string
	Prefix       string
	UpstreamPath string
	Capability   authz.Capability
}

// Destinations lists every protected dashboard section.
func Destinations() []Destination {
	return []Destination{
		{Name: "members", Prefix: "/members", UpstreamPath: "/api/members", Capability: authz.CapViewMembers},
		{Name: "teams", Prefix: "/teams", UpstreamPath: "/api/teams", Capability: authz.CapViewTeams},
		{Name: "finance", Prefix: "/finance", UpstreamPath: "/api/transactions", Capability: authz.CapViewFinance},
		{Name: "inventory", Prefix: "/inventory", UpstreamPath: "/api/inventory", Capability: authz.CapViewInventory},
		{Name: "files", Prefix: "/files", UpstreamPath: "/api/files", Capability: authz.CapViewFiles},
		{Name: "calendar", Prefix: "/calendar", UpstreamPath: "/api/events", Capability: authz.CapViewCalendar},
	}
}

// Proxy forwards dashboard requests to the upstream API with the session's
// bearer token attached. An upstream 401 means the token expired server-side:
// the proxy clears the local session before answering, so the next request
// starts unauthenticated instead of looping on a dead token.
type Proxy struct {
	client       *Client
	provider     *session.Provider
	logger       *slog.Logger
	secureCookie bool
}

// NewProxy constructs a Proxy.
func NewProxy(client *Client, provider *session.Provider, logger *slog.Logger, secureCookie bool) *Proxy {
	return &Proxy{client: client, provider: provider, logger: logger, secureCookie: secureCookie}
}

// MountRoutes attaches every destination behind its capability guard.
func (p *Proxy) MountRoutes(r chi.Router, guard authz.Guard) {
	for _, dest := range Destinations() {
		dest := dest
		r.Route(dest.Prefix, func(r chi.Router) {
			r.Use(guard.RequireCapability(dest.Capability))
			r.HandleFunc("/", p.handler(dest))
			r.HandleFunc("/*", p.handler(dest))
		})
	}
}

func (p *Proxy) handler(dest Destination) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromContext(r.Context())

		path := dest.UpstreamPath
		if rest := chi.URLParam(r, "*"); rest != "" {
			path += "/" + rest
		}

		var body io.Reader
		if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
			body = r.Body
		}

		resp, err := p.client.Do(r.Context(), r.Method, path, r.URL.Query(), body, r.Header.Get("Content-Type"), token)
		if err != nil {
			p.logger.Error("proxy upstream", slog.String("destination", dest.Name), slog.Any("error", err))
			httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "upstream unavailable")
			return
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode == http.StatusUnauthorized {
			if err := p.provider.Logout(r.Context(), token); err != nil {
				p.logger.Warn("implicit logout", slog.Any("error", err))
			}
			session.ClearCookie(w, p.secureCookie)
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired")
			return
		}

		copyHeader(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			p.logger.Warn("proxy copy", slog.String("destination", dest.Name), slog.Any("error", err))
		}
	}
}
