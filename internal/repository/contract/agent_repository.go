package contract

import (
	"context"

	"agent-chat-be/internal/entity"
)

type AgentRepository interface {
	// FindOne returns nil, nil when no agent has the key.
	FindOne(ctx context.Context, key string) (*entity.Agent, error)
	FindAll(ctx context.Context) ([]*entity.Agent, error)
	Save(ctx context.Context, agent *entity.Agent) error
}
