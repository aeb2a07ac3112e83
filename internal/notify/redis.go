package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel storefront clients listen on.
const DefaultChannel = "dots_notifications"

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes each notification as JSON on a redis channel. Publish
// errors are logged and dropped.
type RedisSink struct {
	client  publisher
	channel string
	logger  *zap.Logger
}

func NewRedisSink(client publisher, channel string, logger *zap.Logger) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSink{client: client, channel: channel, logger: logger}
}

func (s *RedisSink) Notify(ctx context.Context, n Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		s.logger.Warn("notification encode failed", zap.String("event", n.Event), zap.Error(err))
		return
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		s.logger.Warn("notification publish failed",
			zap.String("channel", s.channel),
			zap.String("event", n.Event),
			zap.Error(err),
		)
	}
}
