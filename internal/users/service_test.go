package users

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cantina-dev/cantina/internal/platform/query"
	"github.com/cantina-dev/cantina/internal/shared"
)

type fakeRepo struct {
	users map[uuid.UUID]User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[uuid.UUID]User{}}
}

func (f *fakeRepo) Find(_ context.Context, id uuid.UUID) (User, error) {
	user, ok := f.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return user, nil
}

func (f *fakeRepo) List(_ context.Context, _ query.Filter, _ query.Sort, _ shared.Pagination) ([]User, uint64, error) {
	var out []User
	for _, user := range f.users {
		out = append(out, user)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeRepo) SetPrivileges(_ context.Context, id uuid.UUID, isAdmin, isBanned bool) error {
	user, ok := f.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	user.IsAdmin = isAdmin
	user.IsBanned = isBanned
	f.users[id] = user
	return nil
}

func (f *fakeRepo) TouchAccess(_ context.Context, id uuid.UUID) error {
	user, ok := f.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	user.LastAccessTime = time.Now().UTC()
	f.users[id] = user
	return nil
}

func seedUser(repo *fakeRepo, isAdmin bool) uuid.UUID {
	id := uuid.New()
	repo.users[id] = User{ID: id, Email: "bob@example.com", Username: "bob", IsAdmin: isAdmin}
	return id
}

func TestBanningClearsAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	id := seedUser(repo, true)
	banned := true
	require.NoError(t, svc.Edit(ctx, id, EditRequest{IsBanned: &banned}))

	user := repo.users[id]
	require.True(t, user.IsBanned)
	require.False(t, user.IsAdmin)
}

func TestPromotingBannedUserIsRefused(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	id := seedUser(repo, false)
	banned := true
	require.NoError(t, svc.Edit(ctx, id, EditRequest{IsBanned: &banned}))

	// A banned user granted admin in the same breath stays non-admin.
	admin := true
	require.NoError(t, svc.Edit(ctx, id, EditRequest{IsAdmin: &admin}))
	require.False(t, repo.users[id].IsAdmin)
}

func TestMeRefreshesAccessStamp(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, slog.Default())
	ctx := context.Background()

	id := seedUser(repo, false)
	before := repo.users[id].LastAccessTime

	user, err := svc.Me(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "bob", user.Username)
	require.True(t, repo.users[id].LastAccessTime.After(before))
}

func TestEditUnknownUser(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, slog.Default())

	admin := true
	err := svc.Edit(context.Background(), uuid.New(), EditRequest{IsAdmin: &admin})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
