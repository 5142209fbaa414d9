package locking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl, nil), mr
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	l, mr := newTestRedisLocker(t, time.Minute)
	key := redisKeyPrefix + "p-1"

	unlock, err := l.Lock(context.Background(), "p-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	unlock()
	assert.False(t, mr.Exists(key))
	unlock()
}

func TestRedisLocker_WaitsForHolder(t *testing.T) {
	l, _ := newTestRedisLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "p-1")
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		next, err := l.Lock(context.Background(), "p-1")
		if err == nil {
			acquired <- next
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a held lock")
	case <-time.After(100 * time.Millisecond):
	}

	unlock()
	select {
	case next := <-acquired:
		next()
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the released lock")
	}
}

func TestRedisLocker_OtherKeysDoNotBlock(t *testing.T) {
	l, _ := newTestRedisLocker(t, time.Minute)

	unlockA, err := l.Lock(context.Background(), "p-1")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "p-2")
	require.NoError(t, err)
	unlockB()
}

func TestRedisLocker_ContextCancelledWhileWaiting(t *testing.T) {
	l, _ := newTestRedisLocker(t, time.Minute)

	unlock, err := l.Lock(context.Background(), "p-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "p-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLocker_ReleaseLeavesForeignToken(t *testing.T) {
	l, mr := newTestRedisLocker(t, time.Minute)
	key := redisKeyPrefix + "p-1"

	unlock, err := l.Lock(context.Background(), "p-1")
	require.NoError(t, err)

	// Our lease expired and another instance took the product.
	require.NoError(t, mr.Set(key, "other-instance"))
	unlock()

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "other-instance", got)
}

func TestRedisLocker_LeaseExtendedWhileHeld(t *testing.T) {
	ttl := 300 * time.Millisecond
	l, mr := newTestRedisLocker(t, ttl)
	key := redisKeyPrefix + "p-1"

	unlock, err := l.Lock(context.Background(), "p-1")
	require.NoError(t, err)
	defer unlock()

	mr.FastForward(200 * time.Millisecond)
	require.Less(t, mr.TTL(key), ttl)

	assert.Eventually(t, func() bool { return mr.TTL(key) == ttl }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, mr.Exists(key))
}

func TestRedisLocker_ExpiredLeaseCanBeTaken(t *testing.T) {
	ttl := time.Minute
	l, mr := newTestRedisLocker(t, ttl)

	// A holder that crashed leaves its key behind until the TTL runs out.
	require.NoError(t, mr.Set(redisKeyPrefix+"p-1", "crashed-instance"))
	mr.SetTTL(redisKeyPrefix+"p-1", ttl)
	mr.FastForward(ttl)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock, err := l.Lock(ctx, "p-1")
	require.NoError(t, err)
	unlock()
}
