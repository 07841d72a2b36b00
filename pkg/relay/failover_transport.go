package relay

import (
	"context"
	"errors"
	"fmt"

	"agent-chat-be/internal/pkg/logger"
)

// FailoverTransport prefers the broker and drops to the in-process bus whenever a
// publish to the broker fails. Subscribers listen on both, so an event reaches
// local viewers whichever path it took. Broker errors never reach the caller.
type FailoverTransport struct {
	primary  Transport // may be nil when no broker is configured
	fallback Transport
	logger   logger.ILogger
}

var _ Transport = &FailoverTransport{}

func NewFailoverTransport(primary, fallback Transport, log logger.ILogger) *FailoverTransport {
	return &FailoverTransport{primary: primary, fallback: fallback, logger: log}
}

func (t *FailoverTransport) Name() string {
	if t.primary == nil {
		return t.fallback.Name()
	}
	return fmt.Sprintf("%s+%s", t.primary.Name(), t.fallback.Name())
}

func (t *FailoverTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if t.primary != nil {
		err := t.primary.Publish(ctx, channel, payload)
		if err == nil {
			return nil
		}
		t.logger.Warn("FailoverTransport", "Broker publish failed, using in-process bus", map[string]interface{}{
			"broker":  t.primary.Name(),
			"channel": channel,
			"error":   err.Error(),
		})
	}
	return t.fallback.Publish(ctx, channel, payload)
}

func (t *FailoverTransport) Subscribe(ctx context.Context, channel string, deliver func(payload []byte)) (Subscription, error) {
	local, err := t.fallback.Subscribe(ctx, channel, deliver)
	if err != nil {
		return nil, err
	}
	if t.primary == nil {
		return local, nil
	}

	remote, err := t.primary.Subscribe(ctx, channel, deliver)
	if err != nil {
		t.logger.Warn("FailoverTransport", "Broker subscribe failed, in-process bus only", map[string]interface{}{
			"broker":  t.primary.Name(),
			"channel": channel,
			"error":   err.Error(),
		})
		return local, nil
	}
	return multiSubscription{remote, local}, nil
}

func (t *FailoverTransport) Close() error {
	var errs []error
	if t.primary != nil {
		errs = append(errs, t.primary.Close())
	}
	errs = append(errs, t.fallback.Close())
	return errors.Join(errs...)
}
