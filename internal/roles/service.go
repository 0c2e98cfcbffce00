package roles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ikki-Group/erp-sub001/internal/rbac"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// Service handles role administration. Mutations invalidate the rbac
// resolver cache so edits take effect on the next resolution.
type Service struct {
	repo     RepositoryPort
	resolver rbac.Resolver
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, resolver rbac.Resolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]rbac.Role, error) {
	return s.repo.List(ctx)
}

// Get fetches a role by ID.
func (s *Service) Get(ctx context.Context, id int64) (rbac.Role, error) {
	return s.repo.Get(ctx, id)
}

// Create validates codes against the registry and inserts the role.
func (s *Service) Create(ctx context.Context, code, name string, permissionCodes []string) (rbac.Role, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return rbac.Role{}, fmt.Errorf("roles: code and name required")
	}
	normalized, err := normalizeCodes(permissionCodes)
	if err != nil {
		return rbac.Role{}, err
	}
	return s.repo.Create(ctx, code, name, normalized)
}

// Update replaces name and permission codes. System roles are immutable.
func (s *Service) Update(ctx context.Context, id int64, name string, permissionCodes []string) (rbac.Role, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return rbac.Role{}, err
	}
	if existing.IsSystem {
		return rbac.Role{}, ErrSystemRole
	}
	normalized, err := normalizeCodes(permissionCodes)
	if err != nil {
		return rbac.Role{}, err
	}
	updated, err := s.repo.Update(ctx, id, strings.TrimSpace(name), normalized)
	if err != nil {
		return rbac.Role{}, err
	}
	s.invalidateHolders(ctx, id)
	return updated, nil
}

// Delete removes a non-system role together with its assignments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return ErrSystemRole
	}
	s.invalidateHolders(ctx, id)
	return s.repo.Delete(ctx, id)
}

// Assign grants a role to a user, optionally scoped to a location.
func (s *Service) Assign(ctx context.Context, userID, roleID int64, locationID *int64) error {
	if _, err := s.repo.Get(ctx, roleID); err != nil {
		return err
	}
	if err := s.repo.Assign(ctx, userID, roleID, locationID); err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

// Unassign removes a grant at the exact scope it was made.
func (s *Service) Unassign(ctx context.Context, userID, roleID int64, locationID *int64) error {
	if err := s.repo.Unassign(ctx, userID, roleID, locationID); err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

// ListAssignments returns every assignment for a role.
func (s *Service) ListAssignments(ctx context.Context, roleID int64) ([]rbac.RoleAssignment, error) {
	return s.repo.ListAssignments(ctx, roleID)
}

// invalidateHolders drops cached permission sets for every user holding the
// role. Invalidation is best effort: the cache TTL bounds staleness anyway.
func (s *Service) invalidateHolders(ctx context.Context, roleID int64) {
	assignments, err := s.repo.ListAssignments(ctx, roleID)
	if err != nil {
		s.logger.Warn("list assignments for invalidation", slog.Int64("role_id", roleID), slog.Any("error", err))
		return
	}
	for _, a := range assignments {
		s.invalidateUser(ctx, a.UserID)
	}
}

func (s *Service) invalidateUser(ctx context.Context, userID int64) {
	if err := s.resolver.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("invalidate permission cache", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

func normalizeCodes(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if !shared.IsKnownPermission(code) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, code)
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
