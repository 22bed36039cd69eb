package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/crewdesk/crewdesk/internal/authz"
	"github.com/crewdesk/crewdesk/internal/observability"
	"github.com/crewdesk/crewdesk/internal/platform/httpx"
	"github.com/crewdesk/crewdesk/internal/session"
	"github.com/crewdesk/crewdesk/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	provider     *session.Provider
	resolver     authz.Resolver
	validator    *validator.Validate
	metrics      *observability.Metrics
	secureCookie bool
}

// NewHandler constructs a Handler instance. Metrics may be nil.
func NewHandler(logger *slog.Logger, provider *session.Provider, resolver authz.Resolver, metrics *observability.Metrics, secureCookie bool) *Handler {
	return &Handler{
		logger:       logger,
		provider:     provider,
		resolver:     resolver,
		validator:    validator.New(),
		metrics:      metrics,
		secureCookie: secureCookie,
	}
}

// MountRoutes registers auth routes on the provided router. Login carries a
// stricter per-IP rate limit than the global stack to slow guessing.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/login", h.handleLogin)
	})
	r.Get("/session", h.handleSession)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	Token        string              `json:"token,omitempty"`
	Principal    *authz.Principal    `json:"principal"`
	Capabilities authz.CapabilitySet `json:"capabilities"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	principal, token, err := h.provider.Login(r.Context(), req.Email, req.Password, session.LoginMeta{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.metrics.ObserveLogin(loginOutcome(err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveLogin("success")

	session.WriteCookie(w, token, int(h.provider.TTL().Seconds()), h.secureCookie)
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Token:        token,
		Principal:    principal,
		Capabilities: authz.CapabilitiesFor(principal.Role),
	})
}

// handleSession restores the current session. The frontend calls it once at
// startup; an unauthenticated answer is a plain 401, not an error page.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no active session")
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		Principal:    principal,
		Capabilities: h.resolver.CapabilitySet(r.Context()),
	})
}

func loginOutcome(err error) string {
	if errors.Is(err, shared.ErrInvalidCredentials) || errors.Is(err, shared.ErrAccountInactive) {
		return "denied"
	}
	return "error"
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := session.TokenFromContext(r.Context())
	if err := h.provider.Logout(r.Context(), token); err != nil {
		h.logger.Warn("logout", slog.Any("error", err))
	}
	session.ClearCookie(w, h.secureCookie)
	httpx.NoContent(w)
}
