// Package idempotency marks links that are being extracted so that
// concurrent sightings of the same link skip the network work.
package idempotency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/config"
)

const keyPrefix = "ingest:inflight:"

const defaultTTL = 2 * time.Minute

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Guard is an in-flight marker backed by Valkey/Redis SETNX. The unique index
// of the store stays the authoritative duplicate guard; this only saves work.
type Guard struct {
	client   redis.UniversalClient
	ttl      time.Duration
	failOpen bool
	log      *zap.Logger
}

// NewClient creates a Valkey/Redis client from the configuration
func NewClient(cfg config.Valkey) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DialTimeout: cfg.DialTimeout,
	})
}

// NewGuard creates a new guard. Markers expire after ttl so that a crashed
// worker never blocks a link for good.
func NewGuard(client redis.UniversalClient, ttl time.Duration, failOpen bool, log *zap.Logger) *Guard {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Guard{
		client:   client,
		ttl:      ttl,
		failOpen: failOpen,
		log:      log,
	}
}

// Acquire sets the marker for key under a fresh token. It returns false when
// another worker holds it. When Valkey is unreachable the result follows the
// fail-open setting and the token is empty.
func (g *Guard) Acquire(ctx context.Context, key string) (string, bool) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, keyPrefix+key, token, g.ttl).Result()
	if err != nil {
		g.log.Warn("Failed to set in-flight marker",
			zap.String("key", key),
			zap.Bool("fail_open", g.failOpen),
			zap.Error(err))
		return "", g.failOpen
	}
	if !ok {
		return "", false
	}
	return token, true
}

// Release clears the marker only while it still holds token
func (g *Guard) Release(ctx context.Context, key, token string) {
	if token == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := releaseScript.Run(ctx, g.client, []string{keyPrefix + key}, token).Err(); err != nil {
		g.log.Warn("Failed to clear in-flight marker", zap.String("key", key), zap.Error(err))
	}
}

// Ping checks if Valkey is reachable
func (g *Guard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
