package unitofwork

import (
	"context"
	"fmt"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/repository/contract"
	"agent-chat-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // nil outside a transaction
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) AgentRepository() contract.AgentRepository {
	return implementation.NewAgentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MessageRepository() contract.MessageRepository {
	return implementation.NewMessageRepository(u.getDB())
}

// SeedAgents upserts the whole catalogue, or nothing if any agent fails.
func SeedAgents(ctx context.Context, uow UnitOfWork, agents []*entity.Agent) error {
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}

	repo := uow.AgentRepository()
	for _, agent := range agents {
		if err := repo.Save(ctx, agent); err != nil {
			_ = uow.Rollback()
			return fmt.Errorf("seed agent %s: %w", agent.Key, err)
		}
	}

	return uow.Commit()
}
