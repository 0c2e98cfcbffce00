package rbac

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/Ikki-Group/erp-sub001/internal/platform/httpx"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// PermissionsHandler exposes the permission registry and the caller's
// effective permission set.
type PermissionsHandler struct {
	logger   *slog.Logger
	resolver Resolver
	gate     Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, resolver Resolver, gate Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, resolver: resolver, gate: gate}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(shared.PermRolesRead))
		r.Get("/", h.listPermissions)
	})
	// Any authenticated user may inspect their own effective permissions.
	r.Get("/me", h.myPermissions)
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	codes := shared.KnownPermissions()
	sort.Strings(codes)
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": codes})
}

func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	set, err := h.resolver.Resolve(r.Context(), principal.ID, locationScope(r))
	if err != nil {
		h.logger.Error("resolve own permissions", slog.Int64("user_id", principal.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	codes := set.List()
	sort.Strings(codes)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"permissions":    codes,
		"is_super_admin": set.IsSuperAdmin,
	})
}
