package locations

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// ErrCodeTaken indicates a unique violation on the location code.
var ErrCodeTaken = errors.New("locations: code already in use")

// RepositoryPort defines data access methods for locations.
type RepositoryPort interface {
	List(ctx context.Context) ([]Location, error)
	Get(ctx context.Context, id int64) (Location, error)
	Create(ctx context.Context, code, name string) (Location, error)
	Update(ctx context.Context, id int64, name string, active bool) (Location, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const locationColumns = `id, code, name, is_active, created_at, updated_at`

// List returns all locations ordered by code.
func (r *Repository) List(ctx context.Context) ([]Location, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a location by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Location, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
	return scanLocation(row)
}

// Create inserts a new active location.
func (r *Repository) Create(ctx context.Context, code, name string) (Location, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO locations (code, name, is_active, created_at, updated_at)
		 VALUES ($1, $2, TRUE, now(), now()) RETURNING `+locationColumns, code, name)
	loc, err := scanLocation(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Location{}, ErrCodeTaken
		}
		return Location{}, err
	}
	return loc, nil
}

// Update changes name and active flag.
func (r *Repository) Update(ctx context.Context, id int64, name string, active bool) (Location, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE locations SET name = $2, is_active = $3, updated_at = now()
		 WHERE id = $1 RETURNING `+locationColumns, id, name, active)
	return scanLocation(row)
}

func scanLocation(row pgx.Row) (Location, error) {
	var loc Location
	if err := row.Scan(&loc.ID, &loc.Code, &loc.Name, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Location{}, shared.ErrNotFound
		}
		return Location{}, err
	}
	return loc, nil
}

var _ RepositoryPort = (*Repository)(nil)
