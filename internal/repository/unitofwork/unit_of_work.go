package unitofwork

import (
	"context"

	"agent-chat-be/internal/repository/contract"
)

// UnitOfWork groups repository writes into one database transaction.
// Repositories obtained after Begin share the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AgentRepository() contract.AgentRepository
	MessageRepository() contract.MessageRepository
}
