package proposal

import (
	"context"
	"time"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/domain/repository"
	"github.com/rutgers-seed/proposal-portal/internal/domain/valueobject"
)

// RecentWindow окно для счётчика недавних заявок.
const RecentWindow = 30 * 24 * time.Hour

// Statistics сводка для админки.
type Statistics struct {
	Total       int               `json:"total"`
	Recent      int               `json:"recent"`
	TotalBudget valueobject.Money `json:"totalBudget"`
}

type GetStatisticsUseCase struct {
	proposalRepo repository.ProposalRepository
	now          func() time.Time
}

func NewGetStatisticsUseCase(proposalRepo repository.ProposalRepository) *GetStatisticsUseCase {
	return &GetStatisticsUseCase{proposalRepo: proposalRepo, now: time.Now}
}

// WithClock подменяет источник времени.
func (uc *GetStatisticsUseCase) WithClock(now func() time.Time) *GetStatisticsUseCase {
	uc.now = now
	return uc
}

// Execute считает статистику по заявкам, подходящим под term.
func (uc *GetStatisticsUseCase) Execute(ctx context.Context, term string) (*Statistics, error) {
	all, err := uc.proposalRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeStatistics(Filter(all, term), uc.now())
	return &stats, nil
}

// ComputeStatistics граница окна включительная: заявка ровно 30 дней назад считается недавней.
func ComputeStatistics(list []*entity.Proposal, now time.Time) Statistics {
	cutoff := now.Add(-RecentWindow)
	stats := Statistics{TotalBudget: valueobject.NewMoney(0)}

	for _, p := range list {
		stats.Total++
		if !p.SubmittedAt.Before(cutoff) {
			stats.Recent++
		}
		stats.TotalBudget = stats.TotalBudget.Add(p.TotalBudget())
	}
	return stats
}
