package relay

import (
	"context"
	"errors"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/pkg/events"
)

// Publisher sends typed events to a session channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, e events.Event) error
}

// Subscriber attaches handlers to a session channel.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handlers Handlers) (Subscription, error)
}

// Handlers are called per event kind. A nil handler ignores that kind.
type Handlers struct {
	OnStart    func(meta events.AgentMetadata)
	OnRequest  func(content string)
	OnResponse func(content string, meta events.ThemeMetadata)
	OnEnd      func(meta events.AgentMetadata)
	OnError    func(err error)
}

// Dispatch routes e to its handler.
func (h Handlers) Dispatch(e events.Event) {
	switch ev := e.(type) {
	case events.Start:
		if h.OnStart != nil {
			h.OnStart(ev.Metadata)
		}
	case events.Request:
		if h.OnRequest != nil {
			h.OnRequest(ev.Content)
		}
	case events.Response:
		if h.OnResponse != nil {
			h.OnResponse(ev.Content, ev.Metadata)
		}
	case events.End:
		if h.OnEnd != nil {
			h.OnEnd(ev.Metadata)
		}
	case events.Error:
		if h.OnError != nil {
			h.OnError(errors.New(ev.Reason))
		}
	}
}

// Relay is the typed pub/sub used by the generation side and by viewers.
// Events are validated before they leave and again when they arrive.
type Relay struct {
	transport Transport
	logger    logger.ILogger
}

var (
	_ Publisher  = &Relay{}
	_ Subscriber = &Relay{}
)

func New(transport Transport, log logger.ILogger) *Relay {
	return &Relay{transport: transport, logger: log}
}

func (r *Relay) Transport() Transport {
	return r.transport
}

// Publish rejects invalid events without sending anything.
func (r *Relay) Publish(ctx context.Context, channel string, e events.Event) error {
	payload, err := events.Encode(e)
	if err != nil {
		return err
	}
	return r.transport.Publish(ctx, channel, payload)
}

// Subscribe delivers decoded events to handlers. Payloads that fail validation are
// logged and dropped; the subscription keeps running.
func (r *Relay) Subscribe(ctx context.Context, channel string, handlers Handlers) (Subscription, error) {
	return r.transport.Subscribe(ctx, channel, func(payload []byte) {
		e, err := events.Decode(payload)
		if err != nil {
			r.logger.Warn("Relay", "Dropping invalid payload", map[string]interface{}{
				"channel": channel,
				"error":   err.Error(),
				"size":    len(payload),
			})
			return
		}
		handlers.Dispatch(e)
	})
}

func (r *Relay) Close() error {
	return r.transport.Close()
}
