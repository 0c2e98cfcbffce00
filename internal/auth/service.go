package auth

import (
	"context"
	"time"

	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	hasher *Hasher
	codec  *TokenCodec
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher *Hasher, codec *TokenCodec) *Service {
	return &Service{repo: repo, hasher: hasher, codec: codec}
}

// Authenticate validates email/password credentials. Every failure mode maps
// to shared.ErrInvalidCredentials so responses never reveal which field was
// wrong or whether the account exists.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token with the default lifetime.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	token, expiresAt, err := s.codec.Issue(user.ID, user.Email, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// VerifyToken resolves a presented bearer token to a principal. The
// IsSuperAdmin flag is established later, once permissions are resolved.
func (s *Service) VerifyToken(raw string) (*shared.Principal, error) {
	claims, err := s.codec.Verify(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, ErrTokenMalformed
	}
	return &shared.Principal{ID: id, Email: claims.Email}, nil
}

// Codec exposes the token codec for middleware wiring.
func (s *Service) Codec() *TokenCodec {
	return s.codec
}
