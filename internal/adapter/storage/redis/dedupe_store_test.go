package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeStore_CheckAndSet_FirstDelivery(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewDedupeStore(client)

	fresh, err := store.CheckAndSet(context.Background(), "sig-abc")
	require.NoError(t, err)
	assert.True(t, fresh, "first delivery should be fresh")
}

func TestDedupeStore_CheckAndSet_RetriedDelivery(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewDedupeStore(client)
	ctx := context.Background()

	fresh, err := store.CheckAndSet(ctx, "sig-xyz")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.CheckAndSet(ctx, "sig-xyz")
	require.NoError(t, err)
	assert.False(t, fresh, "retried delivery should not be fresh")
}

func TestDedupeStore_CheckAndSet_DistinctNotifications(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewDedupeStore(client)
	ctx := context.Background()

	fresh1, err := store.CheckAndSet(ctx, "sig-1")
	require.NoError(t, err)
	fresh2, err2 := store.CheckAndSet(ctx, "sig-2")
	require.NoError(t, err2)

	assert.True(t, fresh1)
	assert.True(t, fresh2)
}

func TestDedupeStore_CheckAndSet_ExpiredMarker(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewDedupeStore(client)
	ctx := context.Background()

	fresh, err := store.CheckAndSet(ctx, "sig-exp")
	require.NoError(t, err)
	assert.True(t, fresh)

	s.FastForward(dedupeTTL + time.Second)

	fresh, err = store.CheckAndSet(ctx, "sig-exp")
	require.NoError(t, err)
	assert.True(t, fresh, "marker past its TTL should be treated as fresh")
}
