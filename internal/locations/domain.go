package locations

import "time"

// Location is a physical site (warehouse, branch, plant) role assignments
// may be scoped to.
type Location struct {
	ID        int64
	Code      string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
