package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/pledgedesk/db/kvdb"
)

func TestClient_TTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	c := New()
	c.Now = func() time.Time { return clock }
	require.NoError(t, c.Init())

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	clock = clock.Add(50 * time.Second)
	found, err := c.Expire(ctx, "k", time.Minute) // slide
	require.NoError(t, err)
	assert.True(t, found)

	clock = clock.Add(50 * time.Second)
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	clock = clock.Add(20 * time.Second)
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	found, err = c.Expire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()
	c := New()
	require.NoError(t, c.Init())
	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))

	n, err := c.Delete(ctx, "a", "b", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.Close())
	_, err = c.Exists(ctx, "a")
	assert.ErrorIs(t, err, kvdb.ErrNotInitialized)
	assert.Equal(t, kvdb.TypeMemory, c.GetConf().Type)
}
