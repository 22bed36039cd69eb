package authz

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewdesk/crewdesk/internal/platform/httpx"
)

// PermissionsHandler serves the caller's capability set so the frontend can
// decide which menus and actions to render. The answer gates UI affordances
// only; hiding a button is not the same as denying the underlying API call,
// which the upstream backend checks again.
type PermissionsHandler struct {
	logger   *slog.Logger
	resolver Resolver
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, resolver Resolver) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, resolver: resolver}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.currentCapabilities)
}

type capabilitiesResponse struct {
	Role         *Role         `json:"role"`
	Capabilities CapabilitySet `json:"capabilities"`
}

func (h *PermissionsHandler) currentCapabilities(w http.ResponseWriter, r *http.Request) {
	resp := capabilitiesResponse{Capabilities: h.resolver.CapabilitySet(r.Context())}
	if p := PrincipalFromContext(r.Context()); p != nil {
		role := p.Role
		resp.Role = &role
	}
	httpx.JSON(w, http.StatusOK, resp)
}
