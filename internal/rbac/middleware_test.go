package rbac

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Ikki-Group/erp-sub001/internal/auth"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

type stubResolver struct {
	sets map[int64]PermissionSet
	err  error

	lastLocation *int64
}

func (s *stubResolver) Resolve(ctx context.Context, userID int64, locationID *int64) (PermissionSet, error) {
	s.lastLocation = locationID
	if s.err != nil {
		return PermissionSet{}, s.err
	}
	set, ok := s.sets[userID]
	if !ok {
		return NewPermissionSet(), nil
	}
	return set, nil
}

func (s *stubResolver) Invalidate(ctx context.Context, userID int64) error {
	return nil
}

func newGateRouter(t *testing.T, resolver Resolver) (chi.Router, *auth.TokenCodec) {
	t.Helper()
	codec := auth.NewTokenCodec([]byte("test-secret-0123456789abcdef0123"), time.Hour)
	gate := Middleware{
		Verifier: verifierFunc(codec),
		Resolver: resolver,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(gate.Authenticate)
		r.With(gate.RequireAll(shared.PermUsersRead)).Get("/users", okHandler)
		r.With(gate.RequireAll(shared.PermUsersRead, shared.PermUsersDelete)).Delete("/users", okHandler)
		r.With(gate.RequireAny(shared.PermUsersRead, shared.PermRolesRead)).Get("/either", okHandler)
	})
	return r, codec
}

type verifierAdapter struct {
	codec *auth.TokenCodec
}

func verifierFunc(codec *auth.TokenCodec) TokenVerifier {
	return verifierAdapter{codec: codec}
}

func (v verifierAdapter) VerifyToken(raw string) (*shared.Principal, error) {
	claims, err := v.codec.Verify(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, auth.ErrTokenMalformed
	}
	return &shared.Principal{ID: id, Email: claims.Email}, nil
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":             principal.ID,
		"is_super_admin": principal.IsSuperAdmin,
	})
}

func issueToken(t *testing.T, codec *auth.TokenCodec, userID int64) string {
	t.Helper()
	token, _, err := codec.Issue(userID, "user@example.com", 0)
	require.NoError(t, err)
	return token
}

func TestGateRejectsMissingToken(t *testing.T) {
	router, _ := newGateRouter(t, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "authentication required")
}

func TestGateRejectsBadTokensUniformly(t *testing.T) {
	router, _ := newGateRouter(t, &stubResolver{})

	expiredCodec := auth.NewTokenCodec([]byte("test-secret-0123456789abcdef0123"), time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, _, err := expiredCodec.Issue(10, "user@example.com", time.Hour)
	require.NoError(t, err)

	forged := issueToken(t, auth.NewTokenCodec([]byte("some-other-secret-0123456789abcd"), time.Hour), 10)

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "definitely.not.ajwt"},
		{"expired", expired},
		{"forged", forged},
	}
	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		})
	}
	// Responses are byte-identical regardless of the failure mode.
	for i := 1; i < len(bodies); i++ {
		require.Equal(t, bodies[0], bodies[i])
	}
}

func TestGateAdmitsWithPermission(t *testing.T) {
	resolver := &stubResolver{sets: map[int64]PermissionSet{
		10: NewPermissionSet(shared.PermUsersRead),
	}}
	router, codec := newGateRouter(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, codec, 10))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGateDeniesNamingMissingCodes(t *testing.T) {
	resolver := &stubResolver{sets: map[int64]PermissionSet{
		10: NewPermissionSet(shared.PermUsersRead),
	}}
	router, codec := newGateRouter(t, resolver)

	req := httptest.NewRequest(http.MethodDelete, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, codec, 10))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var problem struct {
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, []string{shared.PermUsersDelete}, problem.Missing)
}

func TestGateRequireAny(t *testing.T) {
	resolver := &stubResolver{sets: map[int64]PermissionSet{
		10: NewPermissionSet(shared.PermRolesRead),
	}}
	router, codec := newGateRouter(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "/either", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, codec, 10))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGateSuperAdminBypass(t *testing.T) {
	resolver := &stubResolver{sets: map[int64]PermissionSet{
		10: NewPermissionSet(shared.PermWildcard),
	}}
	router, codec := newGateRouter(t, resolver)

	req := httptest.NewRequest(http.MethodDelete, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, codec, 10))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		IsSuperAdmin bool `json:"is_super_admin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.IsSuperAdmin)
}

func TestGateResolutionFailureIsServerError(t *testing.T) {
	resolver := &stubResolver{err: ErrResolutionFailed}
	router, codec := newGateRouter(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, codec, 10))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGateLocationHeaderScopesResolution(t *testing.T) {
	resolver := &stubResolver{sets: map[int64]PermissionSet{
		10: NewPermissionSet(shared.PermUsersRead),
	}}
	router, codec := newGateRouter(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, codec, 10))
	req.Header.Set("X-Location-ID", "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resolver.lastLocation)
	require.Equal(t, int64(7), *resolver.lastLocation)
}
