package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/GoldPredictor/models"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewWithClient(client, ""), mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	fetched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(ctx, models.RateQuote{Rate: 83.42, Source: models.RateSourcePrimary, FetchedAt: fetched}, time.Minute))

	q, found, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 83.42, q.Rate)
	assert.Equal(t, models.RateSourcePrimary, q.Source)
	assert.True(t, fetched.Equal(q.FetchedAt))
}

func TestCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, models.RateQuote{Rate: 84.5, Source: models.RateSourceStatic, Warning: "fallback"}, 300*time.Second))

	mr.FastForward(299 * time.Second)
	q, found, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "fallback", q.Warning)

	mr.FastForward(time.Second)
	_, found, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_CorruptValue(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(DefaultKey, "not json"))

	_, found, err := c.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), Config{Addr: addr})
	assert.Error(t, err)
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Addr: "localhost:6379"}.Enabled())
}
