package form

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/logger"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

// Submitter проверяет и сохраняет черновик. Ошибка валидации не должна доходить до хранилища.
type Submitter interface {
	Submit(ctx context.Context, d *entity.ProposalDraft) (*entity.Proposal, error)
}

// DraftClearer удаляет локальный снимок черновика.
type DraftClearer interface {
	Clear()
}

// Pipeline отправка черновика из модели. Одновременно выполняется не больше одной отправки.
type Pipeline struct {
	model     *Model
	drafts    DraftClearer
	submitter Submitter
	busy      atomic.Bool
}

func NewPipeline(model *Model, drafts DraftClearer, submitter Submitter) *Pipeline {
	return &Pipeline{model: model, drafts: drafts, submitter: submitter}
}

// Busy сообщает, выполняется ли отправка.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Submit отправляет текущий снимок. При успехе слот черновика очищается и форма
// сбрасывается, при любой ошибке черновик остаётся нетронутым.
func (p *Pipeline) Submit(ctx context.Context) (*entity.Proposal, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, apperror.ErrSubmitInFlight
	}
	defer p.busy.Store(false)

	created, err := p.submitter.Submit(ctx, p.model.Draft())
	if err != nil {
		if !apperror.IsValidation(err) {
			logger.Entry(logrus.Fields{"error": err.Error()}).Warn("form: отправка заявки не удалась, черновик сохранён")
		}
		return nil, err
	}

	p.drafts.Clear()
	p.model.Reset()
	return created, nil
}
