package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cantina-dev/cantina/internal/shared"
)

type fakeRepo struct {
	users map[uuid.UUID]User
}

func (f *fakeRepo) Find(_ context.Context, id uuid.UUID) (User, error) {
	user, ok := f.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return user, nil
}

func (f *fakeRepo) Upsert(_ context.Context, user User) (User, error) {
	stored, ok := f.users[user.ID]
	if ok {
		stored.Email = user.Email
		stored.Name = user.Name
		stored.Username = user.Username
		stored.LastAccessTime = user.LastAccessTime
	} else {
		stored = user
	}
	f.users[user.ID] = stored
	return stored, nil
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

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, "cantina_session", time.Hour, false)
}

func sessionRequest(t *testing.T, store *SessionStore, userID uuid.UUID) *http.Request {
	t.Helper()
	token, err := store.Create(context.Background(), userID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "cantina_session", Value: token})
	return req
}

func TestCurrentUserAttachesUser(t *testing.T) {
	store := newTestStore(t)
	userID := uuid.New()
	repo := &fakeRepo{users: map[uuid.UUID]User{
		userID: {ID: userID, Email: "alice@example.com", Name: "Alice"},
	}}

	var seen User
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, found = UserFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	CurrentUser(store, repo)(next).ServeHTTP(rec, sessionRequest(t, store, userID))

	require.True(t, found)
	require.Equal(t, "alice@example.com", seen.Email)
}

func TestCurrentUserAnonymousWithoutCookie(t *testing.T) {
	store := newTestStore(t)
	repo := &fakeRepo{users: map[uuid.UUID]User{}}

	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = UserFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	CurrentUser(store, repo)(next).ServeHTTP(rec, req)

	require.False(t, found)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireUser(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("banned", func(t *testing.T) {
		ctx := ContextWithUser(context.Background(), User{ID: uuid.New(), IsBanned: true})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		RequireUser(next).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("active", func(t *testing.T) {
		ctx := ContextWithUser(context.Background(), User{ID: uuid.New()})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		RequireUser(next).ServeHTTP(rec, req)
		require.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("regular user", func(t *testing.T) {
		ctx := ContextWithUser(context.Background(), User{ID: uuid.New()})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("banned admin", func(t *testing.T) {
		ctx := ContextWithUser(context.Background(), User{ID: uuid.New(), IsAdmin: true, IsBanned: true})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin", func(t *testing.T) {
		ctx := ContextWithUser(context.Background(), User{ID: uuid.New(), IsAdmin: true})
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, req)
		require.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	token, err := store.Create(ctx, userID)
	require.NoError(t, err)

	resolved, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, userID, resolved)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Resolve(ctx, token)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestStateIsSingleUse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StashState(ctx, "state-1", "nonce-1"))

	nonce, err := store.PopState(ctx, "state-1")
	require.NoError(t, err)
	require.Equal(t, "nonce-1", nonce)

	_, err = store.PopState(ctx, "state-1")
	require.ErrorIs(t, err, shared.ErrValidation)
}
