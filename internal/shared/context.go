package shared

import "context"

// Principal is the authenticated identity derived from a verified token.
// It is reconstructed on every request and never persisted.
type Principal struct {
	ID           int64
	Email        string
	IsSuperAdmin bool
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
