package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpata/pata/internal/ratelimit"
)

func TestLocal_AdmitsUpToLimit(t *testing.T) {
	t.Parallel()

	l := ratelimit.NewLocal(3, time.Hour)
	ctx := context.Background()

	for i := range 3 {
		d := l.Allow(ctx)
		require.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d := l.Allow(ctx)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.True(t, d.ResetAt.After(time.Now()))
}

func TestLocal_NonPositiveSettingsClamped(t *testing.T) {
	t.Parallel()

	l := ratelimit.NewLocal(0, 0)
	assert.True(t, l.Allow(context.Background()).Allowed)
	assert.False(t, l.Allow(context.Background()).Allowed)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedis_FixedWindow(t *testing.T) {
	t.Parallel()

	mr, client := newRedis(t)
	l := ratelimit.NewRedis(client, 2, time.Minute)
	ctx := context.Background()

	d := l.Allow(ctx)
	require.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.WithinDuration(t, time.Now().Add(time.Minute), d.ResetAt, 2*time.Second)

	require.True(t, l.Allow(ctx).Allowed)

	d = l.Allow(ctx)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	// A new window starts once the counter expires.
	mr.FastForward(time.Minute + time.Second)
	assert.True(t, l.Allow(ctx).Allowed)
}

func TestRedis_SharedAcrossInstances(t *testing.T) {
	t.Parallel()

	_, client := newRedis(t)
	a := ratelimit.NewRedis(client, 2, time.Minute)
	b := ratelimit.NewRedis(client, 2, time.Minute)
	ctx := context.Background()

	require.True(t, a.Allow(ctx).Allowed)
	require.True(t, b.Allow(ctx).Allowed)
	assert.False(t, a.Allow(ctx).Allowed)
	assert.False(t, b.Allow(ctx).Allowed)
}

func TestRedis_FallsBackWhenUnavailable(t *testing.T) {
	t.Parallel()

	mr, client := newRedis(t)
	l := ratelimit.NewRedis(client, 1, time.Hour)
	mr.Close()

	ctx := context.Background()
	assert.True(t, l.Allow(ctx).Allowed)
	assert.False(t, l.Allow(ctx).Allowed, "local fallback still enforces the limit")
}

func TestRedis_NilClientUsesLocal(t *testing.T) {
	t.Parallel()

	l := ratelimit.NewRedis(nil, 1, time.Hour)
	assert.True(t, l.Allow(context.Background()).Allowed)
	assert.False(t, l.Allow(context.Background()).Allowed)
}
