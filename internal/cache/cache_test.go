package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/dx-scoping-backend/internal/cache"
)

func setupRedis(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedis(client), mr
}

func TestRedis_SetGet(t *testing.T) {
	c, _ := setupRedis(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "k", "# 1枚サマリー", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "# 1枚サマリー", got)
}

func TestRedis_Expires(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestRedis_ServerDown(t *testing.T) {
	c, mr := setupRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)
}

func TestDial(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := cache.Dial(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Set(context.Background(), "a", "b", time.Minute))
	got, err := mr.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestDial_BadURL(t *testing.T) {
	_, err := cache.Dial(context.Background(), "http://nope")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))
	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, cache.Key("sow", "x"), cache.Key("sow", "x"))
	assert.NotEqual(t, cache.Key("ab", "c"), cache.Key("a", "bc"))
	assert.NotEqual(t, cache.Key("sow", "x"), cache.Key("job_post", "x"))
	assert.Regexp(t, `^dx:doc:[0-9a-f]{64}$`, cache.Key("onepager"))
}
