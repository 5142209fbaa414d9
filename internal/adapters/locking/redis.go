package locking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "inventory:lock:product:"
	redisRetryDelay  = 25 * time.Millisecond
	redisReleaseWait = 2 * time.Second
	defaultRedisTTL  = 30 * time.Second
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
end
return 0
`)

// extendScript pushes the expiry out only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('pexpire', KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker is a product lock shared by several transaction service instances.
// A held lock is extended every third of the TTL until released, so the TTL only
// bounds how long a crashed holder can block a product.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ portssvc.ProductLocker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker on client with the given lease TTL.
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Lock polls SET NX PX until it wins or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, productID string) (func(), error) {
	key := redisKeyPrefix + productID
	token := uuid.NewString()

	ticker := time.NewTicker(redisRetryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire redis lock for product %s: %w", productID, err)
		}
		if ok {
			stop := make(chan struct{})
			go l.keepAlive(key, token, stop)
			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					l.release(key, token)
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) keepAlive(key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), redisReleaseWait)
		extended, err := extendScript.Run(ctx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			l.logger.Warn("Failed to extend product lock", slog.String("key", key), slog.String("error", err.Error()))
		case extended == 0:
			l.logger.Error("Product lock lost while held", slog.String("key", key))
			return
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisReleaseWait)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Error("Failed to release product lock", slog.String("key", key), slog.String("error", err.Error()))
	}
}
