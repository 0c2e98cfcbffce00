package users

import (
	"context"

	"github.com/Ikki-Group/erp-sub001/internal/auth"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// Service handles user management business logic.
type Service struct {
	repo   RepositoryPort
	hasher *auth.Hasher
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, hasher *auth.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	users, total, err := s.repo.List(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create hashes the initial password and stores the account.
func (s *Service) Create(ctx context.Context, email, name, password string) (*User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, email, name, hash)
}

// Update changes the display name.
func (s *Service) Update(ctx context.Context, id int64, name string) (*User, error) {
	return s.repo.Update(ctx, id, name)
}

// Deactivate disables the account.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

// Activate re-enables the account.
func (s *Service) Activate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, true)
}
