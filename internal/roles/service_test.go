package roles

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ikki-Group/erp-sub001/internal/rbac"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

type memoryRolesRepo struct {
	roles       map[int64]rbac.Role
	assignments []rbac.RoleAssignment
	nextID      int64
}

func newMemoryRolesRepo() *memoryRolesRepo {
	return &memoryRolesRepo{roles: make(map[int64]rbac.Role)}
}

func (r *memoryRolesRepo) List(ctx context.Context) ([]rbac.Role, error) {
	out := make([]rbac.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *memoryRolesRepo) Get(ctx context.Context, id int64) (rbac.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return rbac.Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (r *memoryRolesRepo) Create(ctx context.Context, code, name string, permissionCodes []string) (rbac.Role, error) {
	for _, role := range r.roles {
		if role.Code == code {
			return rbac.Role{}, ErrCodeTaken
		}
	}
	r.nextID++
	role := rbac.Role{ID: r.nextID, Code: code, Name: name, PermissionCodes: permissionCodes}
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRolesRepo) Update(ctx context.Context, id int64, name string, permissionCodes []string) (rbac.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return rbac.Role{}, shared.ErrNotFound
	}
	role.Name = name
	role.PermissionCodes = permissionCodes
	r.roles[id] = role
	return role, nil
}

func (r *memoryRolesRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.roles, id)
	kept := r.assignments[:0]
	for _, a := range r.assignments {
		if a.RoleID != id {
			kept = append(kept, a)
		}
	}
	r.assignments = kept
	return nil
}

func (r *memoryRolesRepo) Assign(ctx context.Context, userID, roleID int64, locationID *int64) error {
	for _, a := range r.assignments {
		if a.UserID == userID && a.RoleID == roleID && sameScope(a.LocationID, locationID) {
			return ErrAlreadyAssigned
		}
	}
	r.assignments = append(r.assignments, rbac.RoleAssignment{UserID: userID, RoleID: roleID, LocationID: locationID})
	return nil
}

func (r *memoryRolesRepo) Unassign(ctx context.Context, userID, roleID int64, locationID *int64) error {
	for i, a := range r.assignments {
		if a.UserID == userID && a.RoleID == roleID && sameScope(a.LocationID, locationID) {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryRolesRepo) ListAssignments(ctx context.Context, roleID int64) ([]rbac.RoleAssignment, error) {
	var out []rbac.RoleAssignment
	for _, a := range r.assignments {
		if a.RoleID == roleID {
			out = append(out, a)
		}
	}
	return out, nil
}

func sameScope(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type invalidationSpy struct {
	rbac.Resolver
	invalidated []int64
}

func (s *invalidationSpy) Resolve(ctx context.Context, userID int64, locationID *int64) (rbac.PermissionSet, error) {
	return rbac.NewPermissionSet(), nil
}

func (s *invalidationSpy) Invalidate(ctx context.Context, userID int64) error {
	s.invalidated = append(s.invalidated, userID)
	return nil
}

func newRolesService(t *testing.T) (*Service, *memoryRolesRepo, *invalidationSpy) {
	t.Helper()
	repo := newMemoryRolesRepo()
	spy := &invalidationSpy{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, spy, logger), repo, spy
}

func TestCreateRoleValidatesCodes(t *testing.T) {
	svc, _, _ := newRolesService(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, "viewer", "Viewer", []string{
		" iam.users.read ", "iam.users.read", "iam.roles.read",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"iam.users.read", "iam.roles.read"}, role.PermissionCodes)

	_, err = svc.Create(ctx, "bad", "Bad", []string{"iam.users.read", "not.a.permission"})
	require.ErrorIs(t, err, ErrUnknownPermission)

	_, err = svc.Create(ctx, "", "No Code", nil)
	require.Error(t, err)
}

func TestSystemRoleIsImmutable(t *testing.T) {
	svc, repo, _ := newRolesService(t)
	ctx := context.Background()

	repo.roles[1] = rbac.Role{ID: 1, Code: "superadmin", Name: "Super Admin", PermissionCodes: []string{"*"}, IsSystem: true}

	_, err := svc.Update(ctx, 1, "Renamed", []string{"iam.users.read"})
	require.ErrorIs(t, err, ErrSystemRole)

	err = svc.Delete(ctx, 1)
	require.ErrorIs(t, err, ErrSystemRole)
}

func TestUpdateRoleInvalidatesHolders(t *testing.T) {
	svc, repo, spy := newRolesService(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, "viewer", "Viewer", []string{"iam.users.read"})
	require.NoError(t, err)
	require.NoError(t, svc.Assign(ctx, 10, role.ID, nil))
	require.NoError(t, svc.Assign(ctx, 11, role.ID, nil))
	spy.invalidated = nil

	_, err = svc.Update(ctx, role.ID, "Viewer v2", []string{"iam.users.read", "iam.roles.read"})
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{10, 11}, spy.invalidated)
	require.Len(t, repo.assignments, 2)
}

func TestAssignScopes(t *testing.T) {
	svc, _, spy := newRolesService(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, "manager", "Manager", []string{"inventory.items.update"})
	require.NoError(t, err)

	loc := int64(2)
	require.NoError(t, svc.Assign(ctx, 10, role.ID, nil))
	require.NoError(t, svc.Assign(ctx, 10, role.ID, &loc))
	require.Equal(t, []int64{10, 10}, spy.invalidated)

	// Same scope twice is a conflict.
	err = svc.Assign(ctx, 10, role.ID, &loc)
	require.ErrorIs(t, err, ErrAlreadyAssigned)

	// Unknown role surfaces as not found.
	err = svc.Assign(ctx, 10, 99, nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUnassignExactScope(t *testing.T) {
	svc, repo, spy := newRolesService(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, "manager", "Manager", []string{"inventory.items.update"})
	require.NoError(t, err)

	loc := int64(2)
	require.NoError(t, svc.Assign(ctx, 10, role.ID, nil))
	require.NoError(t, svc.Assign(ctx, 10, role.ID, &loc))
	spy.invalidated = nil

	// Removing the scoped grant leaves the global one intact.
	require.NoError(t, svc.Unassign(ctx, 10, role.ID, &loc))
	require.Len(t, repo.assignments, 1)
	require.Nil(t, repo.assignments[0].LocationID)
	require.Equal(t, []int64{10}, spy.invalidated)

	err = svc.Unassign(ctx, 10, role.ID, &loc)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRoleRemovesAssignments(t *testing.T) {
	svc, repo, spy := newRolesService(t)
	ctx := context.Background()

	role, err := svc.Create(ctx, "temp", "Temp", []string{"iam.users.read"})
	require.NoError(t, err)
	require.NoError(t, svc.Assign(ctx, 10, role.ID, nil))
	spy.invalidated = nil

	require.NoError(t, svc.Delete(ctx, role.ID))
	require.Empty(t, repo.assignments)
	require.Equal(t, []int64{10}, spy.invalidated)

	_, err = svc.Get(ctx, role.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
