package users

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ikki-Group/erp-sub001/internal/auth"
	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

type memoryUsersRepo struct {
	users  map[int64]User
	hashes map[int64]string
	nextID int64
}

func newMemoryUsersRepo() *memoryUsersRepo {
	return &memoryUsersRepo{users: make(map[int64]User), hashes: make(map[int64]string)}
}

func (r *memoryUsersRepo) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	all := make([]User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memoryUsersRepo) Get(ctx context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsersRepo) Create(ctx context.Context, email, name, passwordHash string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}
	r.nextID++
	u := User{ID: r.nextID, Email: email, Name: name, IsActive: true}
	r.users[u.ID] = u
	r.hashes[u.ID] = passwordHash
	return &u, nil
}

func (r *memoryUsersRepo) Update(ctx context.Context, id int64, name string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Name = name
	r.users[id] = u
	return &u, nil
}

func (r *memoryUsersRepo) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return nil
}

func newUsersService(t *testing.T) (*Service, *memoryUsersRepo) {
	t.Helper()
	repo := newMemoryUsersRepo()
	return NewService(repo, auth.NewHasher(bcrypt.MinCost)), repo
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo := newUsersService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "ops@example.com", "Ops", "s3cret-pass")
	require.NoError(t, err)
	require.True(t, user.IsActive)

	stored := repo.hashes[user.ID]
	require.NotEqual(t, "s3cret-pass", stored)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("s3cret-pass")))

	_, err = svc.Create(ctx, "ops@example.com", "Dup", "another-pass")
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Len(t, repo.users, 1)
}

func TestListPaginates(t *testing.T) {
	svc, _ := newUsersService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Create(ctx, email, "User", "s3cret-pass")
		require.NoError(t, err)
	}

	page, pagination, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, 3, pagination.Total)

	page, _, err = svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "c@example.com", page[0].Email)
}

func TestDeactivateAndActivate(t *testing.T) {
	svc, _ := newUsersService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "ops@example.com", "Ops", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, user.ID))
	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.NoError(t, svc.Activate(ctx, user.ID))
	got, err = svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.IsActive)

	require.ErrorIs(t, svc.Deactivate(ctx, 99), shared.ErrNotFound)
}

func TestUpdateName(t *testing.T) {
	svc, _ := newUsersService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "ops@example.com", "Ops", "s3cret-pass")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user.ID, "Operations")
	require.NoError(t, err)
	require.Equal(t, "Operations", updated.Name)

	_, err = svc.Update(ctx, 99, "Ghost")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
