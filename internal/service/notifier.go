package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/pkg/redis"
)

// Notifier fans a change event out to connected clients after a committed
// write. Delivery is best effort: a failed publish never fails the operation
// that produced it.
type Notifier interface {
	Publish(ctx context.Context, event dto.ChangeEvent)
}

// ── redis-backed notifier ──

type redisNotifier struct {
	cache  *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier publishes change events over Redis pub/sub.
func NewRedisNotifier(cache *redis.Client, logger *zap.Logger) Notifier {
	return &redisNotifier{cache: cache, logger: logger}
}

func (n *redisNotifier) Publish(ctx context.Context, event dto.ChangeEvent) {
	event.At = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("marshaling change event", zap.Error(err))
		return
	}
	if err := n.cache.PublishChange(ctx, string(payload)); err != nil {
		n.logger.Warn("publishing change event",
			zap.String("type", event.Type), zap.Error(err))
	}
}

// ── no-op notifier ──

type nopNotifier struct{}

// NewNopNotifier is used when Redis is unavailable and in tests.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) Publish(context.Context, dto.ChangeEvent) {}
