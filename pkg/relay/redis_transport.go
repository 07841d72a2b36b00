package relay

import (
	"context"
	"fmt"
	"time"

	"agent-chat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisConfirmTimeout = 2 * time.Second

// RedisTransport relays payloads over redis PUBLISH/SUBSCRIBE, so every process
// connected to the same redis sees every session channel.
type RedisTransport struct {
	rdb    *redis.Client
	logger logger.ILogger
}

var _ Transport = &RedisTransport{}

func NewRedisTransport(rdb *redis.Client, log logger.ILogger) *RedisTransport {
	return &RedisTransport{rdb: rdb, logger: log}
}

// NewRedisClient parses a redis URL, falling back to treating it as a plain address.
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

func (t *RedisTransport) Name() string {
	return "redis"
}

func (t *RedisTransport) Ping(ctx context.Context) error {
	if err := t.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %v", ErrTransportUnavailable, err)
	}
	return nil
}

func (t *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := t.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: redis publish to %s: %v", ErrTransportUnavailable, channel, err)
	}
	return nil
}

// Subscribe returns at once and never fails on a broken connection. The SUBSCRIBE
// is issued in the background; go-redis keeps reconnecting and re-subscribing, so
// the subscription heals once redis is back.
func (t *RedisTransport) Subscribe(ctx context.Context, channel string, deliver func(payload []byte)) (Subscription, error) {
	// The subscription outlives the caller's request; only Close ends it.
	subCtx := context.WithoutCancel(ctx)

	// No channels yet, so this does not touch the network.
	pubsub := t.rdb.Subscribe(subCtx)

	go func() {
		if err := pubsub.Subscribe(subCtx, channel); err != nil {
			t.logger.Warn("RedisTransport", "Subscribe failed, retrying in background", map[string]interface{}{
				"channel": channel,
				"error":   err.Error(),
			})
		} else {
			confirmCtx, cancel := context.WithTimeout(subCtx, redisConfirmTimeout)
			if _, err := pubsub.Receive(confirmCtx); err != nil {
				t.logger.Warn("RedisTransport", "Subscription not confirmed, retrying in background", map[string]interface{}{
					"channel": channel,
					"error":   err.Error(),
				})
			}
			cancel()
		}

		for msg := range pubsub.Channel() {
			deliver([]byte(msg.Payload))
		}
	}()

	return newSubscription(pubsub.Close), nil
}

func (t *RedisTransport) Close() error {
	return t.rdb.Close()
}
