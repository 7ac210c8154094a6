package proposal

import (
	"context"
	"sort"
	"strings"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/domain/repository"
)

type SearchProposalsUseCase struct {
	proposalRepo repository.ProposalRepository
}

func NewSearchProposalsUseCase(proposalRepo repository.ProposalRepository) *SearchProposalsUseCase {
	return &SearchProposalsUseCase{proposalRepo: proposalRepo}
}

// Execute возвращает заявки, подходящие под term, новые первыми.
// Пустой term означает все заявки.
func (uc *SearchProposalsUseCase) Execute(ctx context.Context, term string) ([]*entity.Proposal, error) {
	all, err := uc.proposalRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, term), nil
}

// Filter отбирает заявки по term и сортирует по времени отправки по убыванию.
func Filter(list []*entity.Proposal, term string) []*entity.Proposal {
	term = strings.ToLower(strings.TrimSpace(term))

	result := make([]*entity.Proposal, 0, len(list))
	for _, p := range list {
		if p != nil && matches(p, term) {
			result = append(result, p)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})
	return result
}

// MatchesTerm проверяет вхождение term без учёта регистра в имя или email
// любого руководителя, описание проблемы или общую цель.
func MatchesTerm(p *entity.Proposal, term string) bool {
	return matches(p, strings.ToLower(strings.TrimSpace(term)))
}

func matches(p *entity.Proposal, term string) bool {
	if term == "" {
		return true
	}
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), term)
	}

	for _, lead := range p.Leads {
		if contains(lead.Name) || contains(lead.Email) {
			return true
		}
	}
	return contains(p.ProblemStatement.EnvironmentalIssue) || contains(p.Goal.OverarchingAim)
}
