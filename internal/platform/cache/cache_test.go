package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestFetchJSONPopulatesAndReuses(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return payload{Name: "beer", Count: 3}, nil
	}

	var got payload
	require.NoError(t, c.FetchJSON(ctx, "product:1", &got, loader))
	require.Equal(t, payload{Name: "beer", Count: 3}, got)
	require.Equal(t, 1, calls)

	var again payload
	require.NoError(t, c.FetchJSON(ctx, "product:1", &again, loader))
	require.Equal(t, got, again)
	require.Equal(t, 1, calls, "second read must come from cache")
}

func TestInvalidateListDropsTrackedPages(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	loader := func(context.Context) (interface{}, error) {
		return []payload{{Name: "a"}}, nil
	}

	var out []payload
	require.NoError(t, c.FetchListJSON(ctx, "products:keys", "products:*-*-0/20", &out, loader))
	require.NoError(t, c.FetchListJSON(ctx, "products:keys", "products:*-*-1/20", &out, loader))
	require.True(t, mr.Exists("products:*-*-0/20"))

	require.NoError(t, c.InvalidateList(ctx, "products:keys"))
	require.False(t, mr.Exists("products:*-*-0/20"))
	require.False(t, mr.Exists("products:*-*-1/20"))
	require.False(t, mr.Exists("products:keys"))
}

func TestNilCacheFallsThrough(t *testing.T) {
	var c *Cache
	var got payload
	err := c.FetchJSON(context.Background(), "k", &got, func(context.Context) (interface{}, error) {
		return payload{Name: "direct"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "direct", got.Name)
	require.NoError(t, c.Invalidate(context.Background(), "k"))
	require.NoError(t, c.InvalidateList(context.Background(), "k:keys"))
}
