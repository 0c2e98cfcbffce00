package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/Ikki-Group/erp-sub001/internal/observability"
	"github.com/Ikki-Group/erp-sub001/internal/platform/httpx"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// PermissionSource reports a user's effective permission codes. Implemented
// by the rbac resolver through a thin adapter in the app wiring.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID int64) (codes []string, isSuperAdmin bool, err error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	perms     PermissionSource
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, perms PermissionSource, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		perms:     perms,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes. The login endpoint gets a tighter rate
// limit than the global one; /me sits behind the auth gate.
func (h *Handler) MountRoutes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Post("/login", h.handleLogin)
	})
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userInfo  `json:"user"`
}

type userInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		// Validation failures on login still answer with the generic 401
		// so responses never reveal which field was unacceptable.
		h.metrics.RecordLogin("failure")
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrInvalidCredentials.Error())
		return
	}

	user, token, expiresAt, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		h.metrics.RecordLogin("failure")
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrInvalidCredentials.Error())
		return
	}

	h.metrics.RecordLogin("success")
	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userInfo{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	codes, isSuperAdmin, err := h.perms.EffectivePermissions(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("resolve permissions", slog.Int64("user_id", principal.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sort.Strings(codes)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":             principal.ID,
		"email":          principal.Email,
		"is_super_admin": isSuperAdmin,
		"permissions":    codes,
	})
}
