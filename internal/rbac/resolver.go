package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// ErrResolutionFailed indicates the persistence collaborator was unavailable
// while resolving permissions. A partial set is never returned: resolution
// fails closed.
var ErrResolutionFailed = errors.New("rbac: permission resolution failed")

// Resolver merges a user's role assignments into a flattened PermissionSet.
type Resolver interface {
	// Resolve computes the permission set for a user. When locationID is
	// non-nil, only assignments scoped to that location or global grants
	// count; when nil, every assignment counts.
	Resolve(ctx context.Context, userID int64, locationID *int64) (PermissionSet, error)
	// Invalidate drops any cached sets for the user. A no-op on the
	// uncached resolver.
	Invalidate(ctx context.Context, userID int64) error
}

// DBResolver resolves against the repository on every call.
type DBResolver struct {
	repo Repository
}

// NewResolver constructs a DBResolver.
func NewResolver(repo Repository) *DBResolver {
	return &DBResolver{repo: repo}
}

// Resolve implements Resolver.
func (r *DBResolver) Resolve(ctx context.Context, userID int64, locationID *int64) (PermissionSet, error) {
	assignments, err := r.repo.GetRoleAssignments(ctx, userID)
	if err != nil {
		return PermissionSet{}, fmt.Errorf("%w: load assignments: %v", ErrResolutionFailed, err)
	}

	seen := make(map[int64]struct{}, len(assignments))
	roleIDs := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		if locationID != nil && a.LocationID != nil && *a.LocationID != *locationID {
			continue
		}
		if _, ok := seen[a.RoleID]; ok {
			continue
		}
		seen[a.RoleID] = struct{}{}
		roleIDs = append(roleIDs, a.RoleID)
	}

	set := PermissionSet{Codes: make(map[string]struct{})}
	for _, roleID := range roleIDs {
		role, err := r.repo.GetRole(ctx, roleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Assignment pointing at a deleted role grants nothing.
				continue
			}
			return PermissionSet{}, fmt.Errorf("%w: load role %d: %v", ErrResolutionFailed, roleID, err)
		}
		for _, code := range role.PermissionCodes {
			set.Codes[code] = struct{}{}
		}
	}
	set.IsSuperAdmin = set.Has(shared.PermWildcard)
	return set, nil
}

// Invalidate is a no-op: nothing is cached across requests.
func (r *DBResolver) Invalidate(ctx context.Context, userID int64) error {
	return nil
}

var _ Resolver = (*DBResolver)(nil)
