package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for dashboard aggregates.
type RepositoryPort interface {
	CollectSummary(ctx context.Context) (Summary, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CollectSummary computes the headline counts in one round trip.
func (r *Repository) CollectSummary(ctx context.Context) (Summary, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM users WHERE is_active),
			(SELECT count(*) FROM roles),
			(SELECT count(*) FROM locations),
			(SELECT count(*) FROM user_roles)`)
	var s Summary
	if err := row.Scan(&s.Users, &s.ActiveUsers, &s.Roles, &s.Locations, &s.RoleAssignments); err != nil {
		return Summary{}, err
	}
	s.GeneratedAt = time.Now().UTC()
	return s, nil
}

var _ RepositoryPort = (*Repository)(nil)
