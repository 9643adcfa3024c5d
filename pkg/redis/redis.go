package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/config"
)

// Client wraps the Redis connection.
// Used for the token blacklist, the day-summary cache, login rate limiting
// and change-event fan-out. Every caller must tolerate a nil *Client: Redis
// is optional and the server degrades without it.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and pings it.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── token blacklist ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken blacklists a JWT ID for the remaining token lifetime.
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token already expired, nothing to blacklist
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted reports whether a JWT ID has been blacklisted.
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── rate limiting ──

// CheckRateLimit counts a hit against key and reports whether it is still
// under limit within the window. Fixed window via INCR + EXPIRE.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// ── day-summary cache ──

const summaryPrefix = "summary:day:"

// GetDaySummary returns the cached summary JSON for a day key, or "" on miss.
func (c *Client) GetDaySummary(ctx context.Context, dayKey string) (string, error) {
	v, err := c.rdb.Get(ctx, summaryPrefix+dayKey).Result()
	if err == goredis.Nil {
		return "", nil
	}
	return v, err
}

// SetDaySummary caches the summary JSON for a day key.
func (c *Client) SetDaySummary(ctx context.Context, dayKey, payload string, ttl time.Duration) error {
	return c.rdb.Set(ctx, summaryPrefix+dayKey, payload, ttl).Err()
}

// ── change-event fan-out ──
//
// Mutation entry points publish a JSON event after each committed write;
// connected clients receive them over the SSE endpoint. This replaces the
// document-store snapshot listeners the first deployment relied on.

const changesChannel = "laserviciu:changes"

// PublishChange broadcasts a change-event payload to all subscribers.
func (c *Client) PublishChange(ctx context.Context, payload string) error {
	return c.rdb.Publish(ctx, changesChannel, payload).Err()
}

// SubscribeChanges subscribes to the change-event channel. The returned
// cancel func must be called to release the subscription.
func (c *Client) SubscribeChanges(ctx context.Context) (<-chan string, func()) {
	sub := c.rdb.Subscribe(ctx, changesChannel)
	out := make(chan string, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
