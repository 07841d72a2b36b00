package relay

import (
	"context"
	"testing"
	"time"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/pkg/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisTransport(t *testing.T) (*RedisTransport, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisTransport(rdb, logger.NewNopLogger()), mr
}

// waitSubscribed blocks until redis reports n subscribers on channel.
func waitSubscribed(t *testing.T, mr *miniredis.Miniredis, channel string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] >= n
	}, 2*time.Second, 10*time.Millisecond)
}

// unreachableRedis points at a port nothing listens on and gives up quickly.
func unreachableRedis() *RedisTransport {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	return NewRedisTransport(rdb, logger.NewNopLogger())
}

func TestRedisTransportRoundTrip(t *testing.T) {
	transport, mr := newMiniredisTransport(t)
	r := New(transport, logger.NewNopLogger())
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, transport.Ping(ctx))

	channel := events.Channel("s1")
	got, sub := collect(t, r, channel)
	defer sub.Close()
	waitSubscribed(t, mr, channel, 1)

	sent := []events.Event{
		events.NewStart("Yoda"),
		events.NewResponse("<p>Do or do not.</p>", "green"),
		events.NewEnd("Yoda"),
	}
	for _, e := range sent {
		require.NoError(t, r.Publish(ctx, channel, e))
	}
	for _, want := range sent {
		assert.Equal(t, want, next(t, got))
	}
}

func TestRedisTransportCrossInstance(t *testing.T) {
	mr := miniredis.RunT(t)
	viewer := NewRedisTransport(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger.NewNopLogger())
	producer := NewRedisTransport(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger.NewNopLogger())
	defer viewer.Close()
	defer producer.Close()

	got, sub := collect(t, New(viewer, logger.NewNopLogger()), events.Channel("s1"))
	defer sub.Close()
	waitSubscribed(t, mr, events.Channel("s1"), 1)

	require.NoError(t, New(producer, logger.NewNopLogger()).Publish(context.Background(), events.Channel("s1"), events.NewRequest("hello")))
	assert.Equal(t, events.NewRequest("hello"), next(t, got))
}

func TestRedisTransportUnavailable(t *testing.T) {
	transport := unreachableRedis()
	defer transport.Close()

	ctx := context.Background()
	assert.ErrorIs(t, transport.Ping(ctx), ErrTransportUnavailable)
	assert.ErrorIs(t, transport.Publish(ctx, "chat:s1", []byte(`{}`)), ErrTransportUnavailable)
}

func TestRedisTransportSubscribeWhileDown(t *testing.T) {
	transport := unreachableRedis()
	defer transport.Close()

	sub, err := transport.Subscribe(context.Background(), "chat:s1", func([]byte) {})
	require.NoError(t, err)
	assert.NoError(t, sub.Close())
}

func TestRedisTransportSubscribeDoesNotBlockWhileDown(t *testing.T) {
	// A dial timeout well above the assertion bound.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "10.255.255.1:6379",
		MaxRetries:  -1,
		DialTimeout: 5 * time.Second,
	})
	transport := NewRedisTransport(rdb, logger.NewNopLogger())
	defer transport.Close()

	begin := time.Now()
	sub, err := transport.Subscribe(context.Background(), "chat:s1", func([]byte) {})
	require.NoError(t, err)
	defer sub.Close()

	assert.Less(t, time.Since(begin), 500*time.Millisecond)
}
