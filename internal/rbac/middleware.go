package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ikki-Group/erp-sub001/internal/auth"
	"github.com/Ikki-Group/erp-sub001/internal/observability"
	"github.com/Ikki-Group/erp-sub001/internal/platform/httpx"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// locationHeader carries the location scope for location-aware permission
// checks. Absent header means an unscoped check.
const locationHeader = "X-Location-ID"

// TokenVerifier resolves a presented bearer token to a principal. Implemented
// by the auth package; any error rejects the request with a uniform 401.
type TokenVerifier interface {
	VerifyToken(raw string) (*shared.Principal, error)
}

// Middleware is the composition point of the auth gate: token extraction,
// verification, permission resolution and the final admit/reject decision.
type Middleware struct {
	Verifier TokenVerifier
	Resolver Resolver
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// Authenticate extracts and verifies the bearer token, attaching the
// principal to the request context. Authentication failures short-circuit
// before any persistence read.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			m.reject(w, "missing")
			return
		}
		principal, err := m.Verifier.VerifyToken(raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			m.reject(w, rejectionReason(err))
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAll admits the request only when the principal holds every listed
// permission. Must run after Authenticate.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, ModeAll)
}

// RequireAny admits the request when the principal holds at least one of the
// listed permissions. Must run after Authenticate.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(perms, ModeAny)
}

func (m Middleware) require(perms []string, mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				m.reject(w, "missing")
				return
			}
			set, err := m.Resolver.Resolve(r.Context(), principal.ID, locationScope(r))
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("permission resolution", slog.Int64("user_id", principal.ID), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			decision := Check(set, perms, mode)
			if !decision.Allowed {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.Int64("user_id", principal.ID),
						slog.String("path", r.URL.Path),
						slog.Any("missing", decision.Missing))
				}
				m.Metrics.RecordPermissionDenial()
				httpx.ProblemMissing(w, decision.Missing)
				return
			}
			updated := *principal
			updated.IsSuperAdmin = set.IsSuperAdmin
			ctx := shared.ContextWithPrincipal(r.Context(), &updated)
			ctx = ContextWithPermissionSet(ctx, set)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// reject sends the uniform 401. The reason feeds metrics and logs only, so
// responses never reveal whether a token was malformed, expired or forged.
func (m Middleware) reject(w http.ResponseWriter, reason string) {
	m.Metrics.RecordTokenRejection(reason)
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
}

// bearerToken extracts the token from the Authorization header. A malformed
// prefix is treated identically to no token.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func locationScope(r *http.Request) *int64 {
	raw := strings.TrimSpace(r.Header.Get(locationHeader))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrTokenSignature):
		return "signature"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
