package proposal

import (
	"context"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/domain/repository"
)

type GetProposalUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewGetProposalUseCase(proposalRepo repository.ProposalRepository) *GetProposalUseCase {
	return &GetProposalUseCase{proposalRepo: proposalRepo}
}

// Execute возвращает заявку или apperror.ErrProposalNotFound.
func (uc *GetProposalUseCase) Execute(ctx context.Context, id int64) (*entity.Proposal, error) {
	return uc.proposalRepo.FindByID(ctx, id)
}

type DeleteProposalUseCase struct {
	proposalRepo repository.ProposalRepository
	events       EventPublisher
}

func NewDeleteProposalUseCase(proposalRepo repository.ProposalRepository, events EventPublisher) *DeleteProposalUseCase {
	return &DeleteProposalUseCase{proposalRepo: proposalRepo, events: events}
}

func (uc *DeleteProposalUseCase) Execute(ctx context.Context, id int64) error {
	if err := uc.proposalRepo.Delete(ctx, id); err != nil {
		return err
	}
	publish(uc.events, EventProposalDeleted, map[string]int64{"id": id})
	return nil
}
