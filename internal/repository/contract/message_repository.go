package contract

import (
	"context"

	"agent-chat-be/internal/entity"
)

// MessageRepository stores chat turns. Listings are in insertion order.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindAllBySession(ctx context.Context, sessionId string) ([]*entity.Message, error)
	FindAllBySessionAndAgent(ctx context.Context, sessionId, agentKey string) ([]*entity.Message, error)
}
