package nats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/pkg/relay"

	"github.com/nats-io/nats.go"
)

// Transport relays session channels over core NATS subjects.
// "chat:<session>" becomes the subject "chat.<session>".
type Transport struct {
	nc     *nats.Conn
	logger logger.ILogger
}

var _ relay.Transport = &Transport{}

// Connect dials NATS. A server that is down at startup is retried in the
// background; publishes fail fast until the connection is up.
func Connect(url string, log logger.ILogger) (*Transport, error) {
	t := &Transport{logger: log}

	nc, err := nats.Connect(url,
		nats.Name("agent-chat-relay"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			t.logger.Warn("NatsTransport", "Disconnected", map[string]interface{}{"error": fmt.Sprint(err)})
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			t.logger.Info("NatsTransport", "Reconnected", map[string]interface{}{"url": c.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	t.nc = nc
	return t, nil
}

func Subject(channel string) string {
	return strings.ReplaceAll(channel, ":", ".")
}

func (t *Transport) Name() string {
	return "nats"
}

func (t *Transport) Ping(ctx context.Context) error {
	if !t.nc.IsConnected() {
		return fmt.Errorf("%w: nats status %s", relay.ErrTransportUnavailable, t.nc.Status())
	}
	if err := t.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("%w: nats flush: %v", relay.ErrTransportUnavailable, err)
	}
	return nil
}

func (t *Transport) Publish(ctx context.Context, channel string, payload []byte) error {
	// While reconnecting nats.go would silently buffer the message; report it instead
	// so the caller can take the in-process path.
	if !t.nc.IsConnected() {
		return fmt.Errorf("%w: nats not connected (%s)", relay.ErrTransportUnavailable, t.nc.Status())
	}

	subject := Subject(channel)
	if err := t.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers even while disconnected; nats.go replays the interest on reconnect.
// Callbacks for one subscription run sequentially.
func (t *Transport) Subscribe(ctx context.Context, channel string, deliver func(payload []byte)) (relay.Subscription, error) {
	subject := Subject(channel)
	sub, err := t.nc.Subscribe(subject, func(msg *nats.Msg) {
		deliver(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	t.logger.Debug("NatsTransport", "Subscribed", map[string]interface{}{"subject": subject})
	return &subscription{sub: sub}, nil
}

func (t *Transport) Close() error {
	if t.nc != nil {
		t.nc.Close()
	}
	return nil
}

type subscription struct {
	sub *nats.Subscription
}

func (s *subscription) Close() error {
	if !s.sub.IsValid() {
		return nil
	}
	return s.sub.Unsubscribe()
}
