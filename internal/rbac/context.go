package rbac

import "context"

type permissionSetContextKey struct{}

// ContextWithPermissionSet stores the resolved permission set in context.
func ContextWithPermissionSet(ctx context.Context, set PermissionSet) context.Context {
	return context.WithValue(ctx, permissionSetContextKey{}, set)
}

// PermissionSetFromContext extracts the resolved permission set, if any.
func PermissionSetFromContext(ctx context.Context) (PermissionSet, bool) {
	set, ok := ctx.Value(permissionSetContextKey{}).(PermissionSet)
	return set, ok
}
