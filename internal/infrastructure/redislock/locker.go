// Package redislock provides a per-key mutual exclusion lock backed by Redis.
package redislock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"finsync/internal/domain/openfinance"
	"finsync/internal/shared/errs"
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker acquires short-lived locks with SET NX PX.
type Locker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// New creates a locker. Keys are namespaced under prefix.
func New(client redis.UniversalClient, prefix string, ttl time.Duration, log *zap.Logger) *Locker {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "finsync:lock"
	}
	return &Locker{client: client, prefix: prefix, ttl: ttl, log: log}
}

// Connect parses a redis:// URL, pings the server and returns the client.
func Connect(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Open builds the locker both binaries share. An empty URL or an unreachable
// server yields openfinance.NoopLocker and a nil client.
func Open(ctx context.Context, rawURL string, ttl time.Duration, log *zap.Logger) (openfinance.Locker, *redis.Client) {
	if rawURL == "" {
		return openfinance.NoopLocker{}, nil
	}
	client, err := Connect(ctx, rawURL)
	if err != nil {
		log.Warn("redis unavailable, sync locking disabled", zap.Error(err))
		return openfinance.NoopLocker{}, nil
	}
	return New(client, "", ttl, log), client
}

func (l *Locker) key(name string) string {
	return l.prefix + ":" + name
}

// Acquire takes the lock or fails with a conflict when it is held elsewhere.
// The returned release is safe to call once the lock has expired.
func (l *Locker) Acquire(ctx context.Context, name string) (func(), error) {
	const op = "redislock.Acquire"

	key := l.key(name)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, errs.E(op, errs.KindInternal, fmt.Errorf("failed to acquire %s: %w", key, err))
	}
	if !ok {
		return nil, errs.Errorf(op, errs.KindConflict, "%s is already running", name)
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}
