package dto

import (
	"time"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/usecase/proposal"
)

// SubmitProposalRequest тело POST /api/proposals: черновик в camelCase.
type SubmitProposalRequest struct {
	entity.ProposalDraft
}

func (r *SubmitProposalRequest) ToDraft() *entity.ProposalDraft {
	return r.ProposalDraft.Clone()
}

type ProposalResponse struct {
	entity.Proposal
	TotalBudget          float64 `json:"totalBudget"`
	FormattedTotalBudget string  `json:"formattedTotalBudget"`
}

func ToProposalResponse(p *entity.Proposal) ProposalResponse {
	budget := p.TotalBudget()
	return ProposalResponse{
		Proposal:             *p,
		TotalBudget:          budget.Amount,
		FormattedTotalBudget: budget.String(),
	}
}

func ToProposalResponses(proposals []*entity.Proposal) []ProposalResponse {
	responses := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		responses = append(responses, ToProposalResponse(p))
	}
	return responses
}

type ProposalListResponse struct {
	Items  []ProposalResponse `json:"items"`
	Total  int                `json:"total"`
	Search string             `json:"search,omitempty"`
}

type StatisticsResponse struct {
	Total                int     `json:"total"`
	Recent               int     `json:"recent"`
	TotalBudget          float64 `json:"totalBudget"`
	FormattedTotalBudget string  `json:"formattedTotalBudget"`
}

func ToStatisticsResponse(s *proposal.Statistics) StatisticsResponse {
	return StatisticsResponse{
		Total:                s.Total,
		Recent:               s.Recent,
		TotalBudget:          s.TotalBudget.Amount,
		FormattedTotalBudget: s.TotalBudget.String(),
	}
}

// LoginRequest вход по паролю либо обмен токена провайдера (accessToken).
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccessToken string `json:"accessToken"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}
