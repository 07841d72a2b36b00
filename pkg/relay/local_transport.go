package relay

import (
	"context"
	"fmt"

	"agent-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// LocalTransport is the in-process bus. It only reaches subscribers living in the
// same process; viewers connected to another instance never see these events.
type LocalTransport struct {
	pubSub *gochannel.GoChannel
}

var _ Transport = &LocalTransport{}

func NewLocalTransport(log logger.ILogger) *LocalTransport {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 64,
			// Wait for the subscriber's ack so one publisher's events stay in order.
			BlockPublishUntilSubscriberAck: true,
		},
		logger.NewWatermillAdapter(log, false, false),
	)
	return &LocalTransport{pubSub: pubSub}
}

func (t *LocalTransport) Name() string {
	return "local"
}

func (t *LocalTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := t.pubSub.Publish(channel, msg); err != nil {
		return fmt.Errorf("local publish to %s: %w", channel, err)
	}
	return nil
}

func (t *LocalTransport) Subscribe(ctx context.Context, channel string, deliver func(payload []byte)) (Subscription, error) {
	// The subscription outlives the caller's request; only Close ends it.
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	messages, err := t.pubSub.Subscribe(subCtx, channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("local subscribe to %s: %w", channel, err)
	}

	go func() {
		for msg := range messages {
			deliver(msg.Payload)
			msg.Ack()
		}
	}()

	return newSubscription(func() error {
		cancel()
		return nil
	}), nil
}

func (t *LocalTransport) Close() error {
	return t.pubSub.Close()
}
