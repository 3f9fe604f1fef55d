package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertExclusive(t *testing.T, l Locker) {
	t.Helper()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "company-a")
	require.NoError(t, err)

	// other keys are independent
	unlockB, err := l.Lock(ctx, "company-b")
	require.NoError(t, err)
	unlockB()

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(short, "company-a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	again, err := l.Lock(ctx, "company-a")
	require.NoError(t, err)
	again()
}

func TestLocal(t *testing.T) {
	l := NewLocal()
	assertExclusive(t, l)

	// double unlock is harmless
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	unlock()
	next, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	next()
}

func TestRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, "lock:", time.Minute)
	l.backoff = 5 * time.Millisecond
	assertExclusive(t, l)

	unlock, err := l.Lock(context.Background(), "company-c")
	require.NoError(t, err)
	assert.True(t, srv.Exists("lock:company-c"))
	unlock()
	assert.False(t, srv.Exists("lock:company-c"))
}

func TestRedisReleaseKeepsForeignLock(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, "lock:", time.Minute)
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	// simulate expiry and takeover by another holder
	require.NoError(t, srv.Set("lock:k", "someone-else"))
	unlock()

	got, err := srv.Get("lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
