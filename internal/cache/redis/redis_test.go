package redis_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokenbridge/internal/cache/redis"
)

func newCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.New(srv.Addr(), 0), srv
}

func TestCache_SetGetDelete(t *testing.T) {
	c, _ := newCache(t)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("k", []byte(`{"policies":[]}`), time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte(`{"policies":[]}`), got)

	c.Delete("k")
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, srv := newCache(t)

	c.Set("k", []byte("v"), 30*time.Second)
	srv.FastForward(31 * time.Second)

	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestCache_ZeroTTLPersists(t *testing.T) {
	c, srv := newCache(t)

	c.Set("k", []byte("v"), 0)
	srv.FastForward(time.Hour)

	_, ok := c.Get("k")
	require.True(t, ok)
}
