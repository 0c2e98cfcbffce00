package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ikki-Group/erp-sub001/internal/platform/db"
	"github.com/Ikki-Group/erp-sub001/internal/rbac"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// RepositoryPort defines data access methods for role administration.
type RepositoryPort interface {
	List(ctx context.Context) ([]rbac.Role, error)
	Get(ctx context.Context, id int64) (rbac.Role, error)
	Create(ctx context.Context, code, name string, permissionCodes []string) (rbac.Role, error)
	Update(ctx context.Context, id int64, name string, permissionCodes []string) (rbac.Role, error)
	Delete(ctx context.Context, id int64) error
	Assign(ctx context.Context, userID, roleID int64, locationID *int64) error
	Unassign(ctx context.Context, userID, roleID int64, locationID *int64) error
	ListAssignments(ctx context.Context, roleID int64) ([]rbac.RoleAssignment, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, code, name, permission_codes, is_system, created_at, updated_at`

// List returns all roles ordered by code.
func (r *Repository) List(ctx context.Context) ([]rbac.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []rbac.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// Get fetches a role by ID.
func (r *Repository) Get(ctx context.Context, id int64) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// Create inserts a new non-system role.
func (r *Repository) Create(ctx context.Context, code, name string, permissionCodes []string) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO roles (code, name, permission_codes, is_system, created_at, updated_at)
		 VALUES ($1, $2, $3, FALSE, now(), now())
		 RETURNING `+roleColumns, code, name, permissionCodes)
	role, err := scanRole(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return rbac.Role{}, ErrCodeTaken
		}
		return rbac.Role{}, err
	}
	return role, nil
}

// Update replaces the name and permission codes of a role.
func (r *Repository) Update(ctx context.Context, id int64, name string, permissionCodes []string) (rbac.Role, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE roles SET name = $2, permission_codes = $3, updated_at = now()
		 WHERE id = $1 RETURNING `+roleColumns, id, name, permissionCodes)
	return scanRole(row)
}

// Delete removes a role and its assignments atomically.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Assign grants a role to a user, optionally scoped to a location.
func (r *Repository) Assign(ctx context.Context, userID, roleID int64, locationID *int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id, location_id, created_at)
		 VALUES ($1, $2, $3, now())`, userID, roleID, locationID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrAlreadyAssigned
			case "23503":
				return shared.ErrNotFound
			}
		}
		return err
	}
	return nil
}

// Unassign removes a grant at the exact scope it was made.
func (r *Repository) Unassign(ctx context.Context, userID, roleID int64, locationID *int64) error {
	var tag pgconn.CommandTag
	var err error
	if locationID == nil {
		tag, err = r.pool.Exec(ctx,
			`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2 AND location_id IS NULL`,
			userID, roleID)
	} else {
		tag, err = r.pool.Exec(ctx,
			`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2 AND location_id = $3`,
			userID, roleID, *locationID)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListAssignments returns every assignment for a role.
func (r *Repository) ListAssignments(ctx context.Context, roleID int64) ([]rbac.RoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, role_id, location_id, created_at
		 FROM user_roles WHERE role_id = $1 ORDER BY user_id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []rbac.RoleAssignment
	for rows.Next() {
		var a rbac.RoleAssignment
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

func scanRole(row pgx.Row) (rbac.Role, error) {
	var role rbac.Role
	if err := row.Scan(&role.ID, &role.Code, &role.Name, &role.PermissionCodes, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rbac.Role{}, shared.ErrNotFound
		}
		return rbac.Role{}, err
	}
	return role, nil
}

var _ RepositoryPort = (*Repository)(nil)
