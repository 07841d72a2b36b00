package implementation

import (
	"context"
	"errors"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/model"
	"agent-chat-be/internal/repository/contract"
	"agent-chat-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AgentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewAgentRepository(db *gorm.DB) contract.AgentRepository {
	return &AgentRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *AgentRepositoryImpl) FindOne(ctx context.Context, key string) (*entity.Agent, error) {
	var m model.Agent
	query := applySpecifications(r.db.WithContext(ctx), specification.ByKey{Key: key})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AgentToEntity(&m), nil
}

func (r *AgentRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Agent, error) {
	var models []*model.Agent
	query := applySpecifications(r.db.WithContext(ctx), specification.OrderBy{Field: "short_name"})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Agent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.AgentToEntity(m)
	}
	return entities, nil
}

// Save inserts the agent or overwrites the row with the same key.
func (r *AgentRepositoryImpl) Save(ctx context.Context, agent *entity.Agent) error {
	m := r.mapper.AgentToModel(agent)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(m).Error
}
