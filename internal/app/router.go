package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Ikki-Group/erp-sub001/internal/auth"
	"github.com/Ikki-Group/erp-sub001/internal/dashboard"
	"github.com/Ikki-Group/erp-sub001/internal/locations"
	"github.com/Ikki-Group/erp-sub001/internal/observability"
	"github.com/Ikki-Group/erp-sub001/internal/rbac"
	"github.com/Ikki-Group/erp-sub001/internal/roles"
	"github.com/Ikki-Group/erp-sub001/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Gate               rbac.Middleware
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	LocationsHandler   *locations.Handler
	DashboardHandler   *dashboard.Handler
	PermissionsHandler *rbac.PermissionsHandler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
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

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, params.Gate.Authenticate)
	})

	// Everything below requires a verified bearer token; individual route
	// groups add their own permission requirements.
	r.Group(func(r chi.Router) {
		r.Use(params.Gate.Authenticate)
		r.Route("/iam/users", params.UsersHandler.MountRoutes)
		r.Route("/iam/roles", params.RolesHandler.MountRoutes)
		r.Route("/iam/locations", params.LocationsHandler.MountRoutes)
		r.Route("/iam/permissions", params.PermissionsHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// PermissionAdapter bridges the rbac resolver to the auth handler's
// PermissionSource port.
type PermissionAdapter struct {
	Resolver rbac.Resolver
}

// EffectivePermissions implements auth.PermissionSource with an unscoped
// resolution (all assignments count).
func (a PermissionAdapter) EffectivePermissions(ctx context.Context, userID int64) ([]string, bool, error) {
	set, err := a.Resolver.Resolve(ctx, userID, nil)
	if err != nil {
		return nil, false, err
	}
	return set.List(), set.IsSuperAdmin, nil
}
