package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/rutgers-seed/proposal-portal/internal/interface/http/dto"
	"github.com/rutgers-seed/proposal-portal/internal/interface/http/response"
	"github.com/rutgers-seed/proposal-portal/internal/usecase/proposal"
)

// ProposalHandler публичная отправка заявки.
type ProposalHandler struct {
	submitUC *proposal.SubmitProposalUseCase
}

func NewProposalHandler(submitUC *proposal.SubmitProposalUseCase) *ProposalHandler {
	return &ProposalHandler{submitUC: submitUC}
}

// Submit обрабатывает POST /api/proposals.
func (h *ProposalHandler) Submit(c *gin.Context) {
	var req dto.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	created, err := h.submitUC.Execute(c.Request.Context(), req.ToDraft())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProposalResponse(created))
}
