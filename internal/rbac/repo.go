package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// Repository is the read-only persistence collaborator the resolver consumes.
// Role rows are read at resolution time so permission edits take effect on
// the next request.
type Repository interface {
	GetRoleAssignments(ctx context.Context, userID int64) ([]RoleAssignment, error)
	GetRole(ctx context.Context, roleID int64) (Role, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetRoleAssignments returns every role assignment for the user.
func (r *PGRepository) GetRoleAssignments(ctx context.Context, userID int64) ([]RoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, role_id, location_id, created_at
		 FROM user_roles WHERE user_id = $1 ORDER BY role_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []RoleAssignment
	for rows.Next() {
		var a RoleAssignment
		if err := rows.Scan(&a.UserID, &a.RoleID, &a.LocationID, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetRole fetches a role with its permission codes.
func (r *PGRepository) GetRole(ctx context.Context, roleID int64) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, code, name, permission_codes, is_system, created_at, updated_at
		 FROM roles WHERE id = $1`, roleID)
	var role Role
	if err := row.Scan(&role.ID, &role.Code, &role.Name, &role.PermissionCodes, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

var _ Repository = (*PGRepository)(nil)
