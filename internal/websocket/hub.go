package websocket

import (
	"context"
	"sync"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/pkg/events"
	"agent-chat-be/pkg/relay"
)

// Hub fans session events out to every viewer connected to this instance.
// It holds one relay subscription per session with at least one viewer.
type Hub struct {
	// Registered clients map: SessionID -> viewers of that session
	clients map[string][]*Client

	// Relay subscription per watched session
	subscriptions map[string]relay.Subscription

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Lock for safe map access
	mu sync.RWMutex

	subscriber relay.Subscriber
	logger     logger.ILogger
}

func NewHub(subscriber relay.Subscriber, log logger.ILogger) *Hub {
	return &Hub{
		clients:       make(map[string][]*Client),
		subscriptions: make(map[string]relay.Subscription),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
		subscriber:    subscriber,
		logger:        log,
	}
}

// Run serves registrations until ctx is done, then drops every viewer.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.add(ctx, client)

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.shutdown()
			close(h.done)
			return
		}
	}
}

// Register adds a viewer. After the hub has stopped the client is closed at once.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		h.mu.Lock()
		client.close()
		h.mu.Unlock()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Viewers reports how many clients watch the session on this instance.
func (h *Hub) Viewers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Sessions reports how many sessions have at least one viewer on this instance.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}

func (h *Hub) add(ctx context.Context, client *Client) {
	h.mu.RLock()
	_, watched := h.subscriptions[client.SessionID]
	h.mu.RUnlock()

	if !watched {
		sub, err := h.subscriber.Subscribe(ctx, events.Channel(client.SessionID), h.handlers(client.SessionID))
		if err != nil {
			h.logger.Error("Hub", "Session subscribe failed", map[string]interface{}{
				"session_id": client.SessionID,
				"error":      err,
			})
			client.close()
			return
		}
		h.mu.Lock()
		h.subscriptions[client.SessionID] = sub
		h.mu.Unlock()
	}

	h.mu.Lock()
	h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
	viewers := len(h.clients[client.SessionID])
	h.mu.Unlock()

	h.logger.Info("Hub", "Viewer registered", map[string]interface{}{
		"session_id": client.SessionID,
		"viewers":    viewers,
	})
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	h.removeLocked(client)
	var sub relay.Subscription
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		sub = h.subscriptions[client.SessionID]
		delete(h.subscriptions, client.SessionID)
	}
	h.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			h.logger.Warn("Hub", "Closing session subscription failed", map[string]interface{}{
				"session_id": client.SessionID,
				"error":      err.Error(),
			})
		}
		h.logger.Info("Hub", "Session no longer watched", map[string]interface{}{"session_id": client.SessionID})
	}
}

// removeLocked drops client from its session list and closes its send queue.
func (h *Hub) removeLocked(client *Client) {
	clients := h.clients[client.SessionID]
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i:i], clients[i+1:]...)
			break
		}
	}
	client.close()
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			c.close()
		}
	}
	for sessionID, sub := range h.subscriptions {
		_ = sub.Close()
		delete(h.subscriptions, sessionID)
	}
	h.clients = make(map[string][]*Client)
}

func (h *Hub) handlers(sessionID string) relay.Handlers {
	return relay.Handlers{
		OnStart: func(meta events.AgentMetadata) {
			h.broadcast(sessionID, events.Start{Metadata: meta})
		},
		OnRequest: func(content string) {
			h.broadcast(sessionID, events.NewRequest(content))
		},
		OnResponse: func(content string, meta events.ThemeMetadata) {
			h.broadcast(sessionID, events.Response{Content: content, Metadata: meta})
		},
		OnEnd: func(meta events.AgentMetadata) {
			h.broadcast(sessionID, events.End{Metadata: meta})
		},
		OnError: func(err error) {
			h.broadcast(sessionID, events.NewError(err.Error()))
		},
	}
}

// broadcast queues the event frame on every viewer of the session. A viewer whose
// queue is full is disconnected rather than allowed to stall the others.
func (h *Hub) broadcast(sessionID string, e events.Event) {
	frame, err := events.Encode(e)
	if err != nil {
		h.logger.Warn("Hub", "Dropping unencodable event", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range append([]*Client(nil), h.clients[sessionID]...) {
		if !client.enqueue(frame) {
			h.logger.Warn("Hub", "Viewer send queue full, disconnecting", map[string]interface{}{"session_id": sessionID})
			h.removeLocked(client)
		}
	}
}
