package rdx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipebox/logging"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	revokedKeyPrefix = "revoked:token:"
	lockKeyPrefix    = "lock:like:"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Client wraps redis.Client. Lock and revocation helpers fail open: a Redis
// outage degrades to the store's own guarantees instead of failing requests.
type Client struct {
	Conn *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	return &Client{Conn: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.Conn.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.Conn.Close()
}

// Acquire takes a short-lived lock on key. ok is false when someone else
// holds it. The returned release is safe to call more than once.
func (c *Client) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool) {
	token := uuid.NewString()
	fullKey := lockKeyPrefix + key

	acquired, err := c.Conn.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		logging.Warn("redis lock unavailable, continuing without it", zap.String("key", fullKey), zap.Error(err))
		return func() {}, true
	}
	if !acquired {
		return func() {}, false
	}

	return func() {
		// Detached from the request context so a cancelled request still unlocks.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, c.Conn, []string{fullKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			logging.Warn("redis lock release failed", zap.String("key", fullKey), zap.Error(err))
		}
	}, true
}

// Revoke marks a token id as revoked until ttl elapses.
func (c *Client) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.Conn.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (c *Client) IsRevoked(ctx context.Context, tokenID string) bool {
	n, err := c.Conn.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		logging.Warn("redis revocation lookup failed", zap.String("jti", tokenID), zap.Error(err))
		return false
	}
	return n > 0
}
