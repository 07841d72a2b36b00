package websocket

import (
	"context"
	"testing"
	"time"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/pkg/events"
	"agent-chat-be/pkg/relay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *relay.Relay, context.CancelFunc) {
	t.Helper()
	r := relay.New(relay.NewLocalTransport(logger.NewNopLogger()), logger.NewNopLogger())
	hub := NewHub(r, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		r.Close()
	})
	return hub, r, cancel
}

func waitViewers(t *testing.T, hub *Hub, sessionID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Viewers(sessionID) == n }, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case frame := <-c.Send:
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func TestHubFansOutPerSession(t *testing.T) {
	hub, r, _ := newTestHub(t)

	a1 := NewClient(hub, "s1", nil)
	a2 := NewClient(hub, "s1", nil)
	b := NewClient(hub, "s2", nil)
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)
	waitViewers(t, hub, "s1", 2)
	waitViewers(t, hub, "s2", 1)

	event := events.NewResponse("<p>hello</p>", "#4caf50")
	require.NoError(t, r.Publish(context.Background(), events.Channel("s1"), event))

	want, err := events.Encode(event)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(receive(t, a1)))
	assert.JSONEq(t, string(want), string(receive(t, a2)))

	select {
	case frame := <-b.Send:
		t.Fatalf("other session got %s", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubForwardsEveryKind(t *testing.T) {
	hub, r, _ := newTestHub(t)

	c := NewClient(hub, "s1", nil)
	hub.Register(c)
	waitViewers(t, hub, "s1", 1)

	sent := []events.Event{
		events.NewRequest("hi"),
		events.NewStart("Yoda"),
		events.NewResponse("<p>x</p>", "green"),
		events.NewEnd("Yoda"),
		events.NewError("Stream Text Failure"),
	}
	for _, e := range sent {
		require.NoError(t, r.Publish(context.Background(), events.Channel("s1"), e))
	}
	for _, e := range sent {
		got, err := events.Decode(receive(t, c))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
}

func TestHubUnregisterClosesQueueAndSubscription(t *testing.T) {
	hub, r, _ := newTestHub(t)

	c := NewClient(hub, "s1", nil)
	hub.Register(c)
	waitViewers(t, hub, "s1", 1)

	hub.Unregister(c)
	waitViewers(t, hub, "s1", 0)

	_, open := <-c.Send
	assert.False(t, open)

	hub.mu.RLock()
	_, watched := hub.subscriptions["s1"]
	hub.mu.RUnlock()
	assert.False(t, watched)

	assert.NoError(t, r.Publish(context.Background(), events.Channel("s1"), events.NewRequest("nobody listens")))
	// Unregistering twice is harmless.
	hub.Unregister(c)
}

func TestHubDisconnectsSlowViewer(t *testing.T) {
	hub, r, _ := newTestHub(t)

	slow := NewClient(hub, "s1", nil)
	hub.Register(slow)
	waitViewers(t, hub, "s1", 1)

	for i := 0; i <= sendQueueSize; i++ {
		require.NoError(t, r.Publish(context.Background(), events.Channel("s1"), events.NewRequest("flood")))
	}

	waitViewers(t, hub, "s1", 0)
	drained := 0
	for range slow.Send {
		drained++
	}
	assert.Equal(t, sendQueueSize, drained)
}

func TestHubShutdown(t *testing.T) {
	hub, _, cancel := newTestHub(t)

	c := NewClient(hub, "s1", nil)
	hub.Register(c)
	waitViewers(t, hub, "s1", 1)

	cancel()
	_, open := <-c.Send
	assert.False(t, open)

	late := NewClient(hub, "s1", nil)
	hub.Register(late)
	_, open = <-late.Send
	assert.False(t, open)
	hub.Unregister(late)
}
