package locations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

type memoryLocationsRepo struct {
	locations map[int64]Location
	nextID    int64
}

func newMemoryLocationsRepo() *memoryLocationsRepo {
	return &memoryLocationsRepo{locations: make(map[int64]Location)}
}

func (r *memoryLocationsRepo) List(ctx context.Context) ([]Location, error) {
	out := make([]Location, 0, len(r.locations))
	for _, loc := range r.locations {
		out = append(out, loc)
	}
	return out, nil
}

func (r *memoryLocationsRepo) Get(ctx context.Context, id int64) (Location, error) {
	loc, ok := r.locations[id]
	if !ok {
		return Location{}, shared.ErrNotFound
	}
	return loc, nil
}

func (r *memoryLocationsRepo) Create(ctx context.Context, code, name string) (Location, error) {
	for _, loc := range r.locations {
		if loc.Code == code {
			return Location{}, ErrCodeTaken
		}
	}
	r.nextID++
	loc := Location{ID: r.nextID, Code: code, Name: name, IsActive: true}
	r.locations[loc.ID] = loc
	return loc, nil
}

func (r *memoryLocationsRepo) Update(ctx context.Context, id int64, name string, active bool) (Location, error) {
	loc, ok := r.locations[id]
	if !ok {
		return Location{}, shared.ErrNotFound
	}
	loc.Name = name
	loc.IsActive = active
	r.locations[id] = loc
	return loc, nil
}

func TestCreateLocationNormalizesCode(t *testing.T) {
	svc := NewService(newMemoryLocationsRepo())
	ctx := context.Background()

	loc, err := svc.Create(ctx, " wh-01 ", "Main Warehouse")
	require.NoError(t, err)
	require.Equal(t, "WH-01", loc.Code)
	require.True(t, loc.IsActive)

	_, err = svc.Create(ctx, "WH-01", "Duplicate")
	require.ErrorIs(t, err, ErrCodeTaken)

	_, err = svc.Create(ctx, "", "No Code")
	require.Error(t, err)
}

func TestUpdateLocation(t *testing.T) {
	svc := NewService(newMemoryLocationsRepo())
	ctx := context.Background()

	loc, err := svc.Create(ctx, "WH-01", "Main Warehouse")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, loc.ID, "Decommissioned Warehouse", false)
	require.NoError(t, err)
	require.False(t, updated.IsActive)

	_, err = svc.Update(ctx, 99, "Ghost", true)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
