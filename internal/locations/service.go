package locations

import (
	"context"
	"fmt"
	"strings"
)

// Service handles location business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all locations.
func (s *Service) List(ctx context.Context) ([]Location, error) {
	return s.repo.List(ctx)
}

// Get fetches a location by ID.
func (s *Service) Get(ctx context.Context, id int64) (Location, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new location.
func (s *Service) Create(ctx context.Context, code, name string) (Location, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return Location{}, fmt.Errorf("locations: code and name required")
	}
	return s.repo.Create(ctx, code, name)
}

// Update changes name and active flag.
func (s *Service) Update(ctx context.Context, id int64, name string, active bool) (Location, error) {
	return s.repo.Update(ctx, id, strings.TrimSpace(name), active)
}
