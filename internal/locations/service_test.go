package locations

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

type fakeRepo struct {
	locations  map[uuid.UUID]Location
	lastFilter string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{locations: map[uuid.UUID]Location{}}
}

func (f *fakeRepo) Find(_ context.Context, id uuid.UUID) (Location, error) {
	location, ok := f.locations[id]
	if !ok {
		return Location{}, shared.ErrNotFound
	}
	return location, nil
}

func (f *fakeRepo) List(_ context.Context, filter query.Filter, _ query.Sort, _ shared.Pagination) ([]Location, uint64, error) {
	f.lastFilter = filter.Key()
	var out []Location
	for _, location := range f.locations {
		out = append(out, location)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeRepo) Create(_ context.Context, location Location) error {
	for _, existing := range f.locations {
		if existing.Name == location.Name {
			return shared.ErrValidation
		}
	}
	f.locations[location.ID] = location
	return nil
}

func (f *fakeRepo) Update(_ context.Context, location Location) error {
	if _, ok := f.locations[location.ID]; !ok {
		return shared.ErrNotFound
	}
	f.locations[location.ID] = location
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.locations[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.locations, id)
	return nil
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, slog.Default())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Name: "foyer"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateRequest{Name: "foyer"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, slog.Default())

	bad := Category("hallway")
	_, err := svc.Create(context.Background(), CreateRequest{Name: "foyer", Category: &bad})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestEditCategory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateRequest{Name: "foyer"})
	require.NoError(t, err)

	room := CategoryRoom
	require.NoError(t, svc.Edit(ctx, id, EditRequest{Category: &room}))
	require.Equal(t, CategoryRoom, *repo.locations[id].Category)
	require.Equal(t, "foyer", repo.locations[id].Name)
}

func TestListHidesDisabledForNonAdmins(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	filter, err := Def.ParseFilter(nil)
	require.NoError(t, err)

	_, err = svc.List(ctx, filter, query.Sort{}, shared.Pagination{PerPage: 20}, false)
	require.NoError(t, err)
	require.Contains(t, repo.lastFilter, "disabled_eq=false")

	filter, err = Def.ParseFilter(nil)
	require.NoError(t, err)
	_, err = svc.List(ctx, filter, query.Sort{}, shared.Pagination{PerPage: 20}, true)
	require.NoError(t, err)
	require.Equal(t, "*", repo.lastFilter)
}
