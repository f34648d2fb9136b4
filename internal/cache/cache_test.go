// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/product-research/pkg/types"
)

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	store, err := NewRedis(ctx, types.CacheConfig{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "walmart:coffee", []byte(`{"hits":[]}`), time.Minute))
	got, err := store.Get(ctx, "walmart:coffee")
	require.NoError(t, err)
	assert.Equal(t, `{"hits":[]}`, string(got))

	assert.True(t, mr.Exists("test:walmart:coffee"), "key should carry the prefix")

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "walmart:coffee")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNewRedisPingFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedis(context.Background(), types.CacheConfig{Addr: addr})
	assert.ErrorContains(t, err, "redis ping")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	value := []byte("v1")
	require.NoError(t, m.Set(ctx, "k", value, time.Second))
	value[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got), "stored value must not alias the caller's slice")

	now = now.Add(time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))
	now = now.Add(24 * time.Hour)
	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)

	require.NoError(t, m.Close())
	_, err = m.Get(ctx, "forever")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, types.CacheConfig{Backend: types.CacheNone})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(ctx, types.CacheConfig{Backend: types.CacheMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = New(ctx, types.CacheConfig{Backend: "disk"})
	assert.ErrorContains(t, err, "disk")
}
