package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/export"
	"github.com/rutgers-seed/proposal-portal/internal/http/middleware"
	"github.com/rutgers-seed/proposal-portal/internal/identity"
	"github.com/rutgers-seed/proposal-portal/internal/interface/http/dto"
	"github.com/rutgers-seed/proposal-portal/internal/interface/http/response"
	"github.com/rutgers-seed/proposal-portal/internal/metrics"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
	"github.com/rutgers-seed/proposal-portal/internal/usecase/proposal"
)

// AdminHandler вход администратора, просмотр, статистика, удаление и выгрузка заявок.
type AdminHandler struct {
	auth         *identity.Authenticator
	searchUC     *proposal.SearchProposalsUseCase
	getUC        *proposal.GetProposalUseCase
	deleteUC     *proposal.DeleteProposalUseCase
	statsUC      *proposal.GetStatisticsUseCase
	exportPrefix string
	now          func() time.Time
}

func NewAdminHandler(
	auth *identity.Authenticator,
	searchUC *proposal.SearchProposalsUseCase,
	getUC *proposal.GetProposalUseCase,
	deleteUC *proposal.DeleteProposalUseCase,
	statsUC *proposal.GetStatisticsUseCase,
	exportPrefix string,
) *AdminHandler {
	return &AdminHandler{
		auth:         auth,
		searchUC:     searchUC,
		getUC:        getUC,
		deleteUC:     deleteUC,
		statsUC:      statsUC,
		exportPrefix: exportPrefix,
		now:          time.Now,
	}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "некорректные данные запроса")
		return
	}

	var (
		session *identity.AdminSession
		err     error
	)
	if req.AccessToken != "" {
		session, err = h.auth.Exchange(c.Request.Context(), req.AccessToken)
	} else {
		session, err = h.auth.Login(c.Request.Context(), req.Email, req.Password)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.SessionResponse{Token: session.Token, Email: session.Email, ExpiresAt: session.ExpiresAt})
}

// Logout обрабатывает POST /api/admin/logout. Повторный выход не ошибка.
func (h *AdminHandler) Logout(c *gin.Context) {
	if token := middleware.BearerToken(c); token != "" {
		h.auth.Logout(token)
	}
	c.Status(http.StatusNoContent)
}

// List обрабатывает GET /api/admin/proposals?search=.
func (h *AdminHandler) List(c *gin.Context) {
	term := searchTerm(c)
	list, err := h.searchUC.Execute(c.Request.Context(), term)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ProposalListResponse{
		Items:  dto.ToProposalResponses(list),
		Total:  len(list),
		Search: term,
	})
}

// Get обрабатывает GET /api/admin/proposals/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	p, err := h.getUC.Execute(c.Request.Context(), middleware.ParamID(c, "id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToProposalResponse(p))
}

// Delete обрабатывает DELETE /api/admin/proposals/:id.
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.deleteUC.Execute(c.Request.Context(), middleware.ParamID(c, "id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats обрабатывает GET /api/admin/stats?search=.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsUC.Execute(c.Request.Context(), searchTerm(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToStatisticsResponse(stats))
}

// Export обрабатывает GET /api/admin/export?search=&format=xlsx|csv.
func (h *AdminHandler) Export(c *gin.Context) {
	list, err := h.searchUC.Execute(c.Request.Context(), searchTerm(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.writeExport(c, list, h.exportPrefix)
}

// ExportOne обрабатывает GET /api/admin/proposals/:id/export.
func (h *AdminHandler) ExportOne(c *gin.Context) {
	id := middleware.ParamID(c, "id")
	p, err := h.getUC.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.writeExport(c, []*entity.Proposal{p}, fmt.Sprintf("seed-proposal-%d", id))
}

func (h *AdminHandler) writeExport(c *gin.Context, list []*entity.Proposal, prefix string) {
	now := h.now()
	primary := export.RendererFor(c.Query("format"))

	var fallback export.Renderer
	if primary.Format() != export.FormatCSV {
		fallback = export.CSVRenderer{}
	}

	var buf bytes.Buffer
	format, err := export.Render(&buf, export.BuildWorkbook(list, now), primary, fallback)
	if err != nil {
		response.Error(c, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сформировать выгрузку"))
		return
	}
	metrics.RecordExport(format)

	response.Attachment(c, export.DefaultFilename(prefix, now)+"."+format, buf.Bytes())
}
