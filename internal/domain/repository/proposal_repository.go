package repository

import (
	"context"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
)

// ProposalRepository хранилище заявок. id и submitted_at назначает само хранилище.
type ProposalRepository interface {
	Insert(ctx context.Context, record *entity.Record) (*entity.Proposal, error)
	// List возвращает все заявки, новые первыми.
	List(ctx context.Context) ([]*entity.Proposal, error)
	FindByID(ctx context.Context, id int64) (*entity.Proposal, error)
	Delete(ctx context.Context, id int64) error
}
