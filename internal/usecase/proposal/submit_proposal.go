package proposal

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/domain/repository"
	"github.com/rutgers-seed/proposal-portal/internal/logger"
	"github.com/rutgers-seed/proposal-portal/internal/metrics"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
	"github.com/rutgers-seed/proposal-portal/internal/validation"
)

const (
	EventProposalSubmitted = "proposal.submitted"
	EventProposalDeleted   = "proposal.deleted"
)

// EventPublisher рассылает события администраторам.
type EventPublisher interface {
	Broadcast(event string, data any) error
}

type SubmitProposalUseCase struct {
	validator    *validation.Validator
	proposalRepo repository.ProposalRepository
	events       EventPublisher
}

// NewSubmitProposalUseCase создаёт сценарий отправки. events может быть nil.
func NewSubmitProposalUseCase(validator *validation.Validator, proposalRepo repository.ProposalRepository, events EventPublisher) *SubmitProposalUseCase {
	return &SubmitProposalUseCase{
		validator:    validator,
		proposalRepo: proposalRepo,
		events:       events,
	}
}

// Execute проверяет черновик и сохраняет его одной вставкой.
// Ошибка валидации возвращается до любого обращения к хранилищу.
func (uc *SubmitProposalUseCase) Execute(ctx context.Context, draft *entity.ProposalDraft) (*entity.Proposal, error) {
	if draft == nil {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "пустая заявка")
	}

	normalized, errs := uc.validator.Validate(draft)
	if len(errs) > 0 {
		metrics.RecordSubmission(metrics.OutcomeInvalid)
		return nil, errs.Err()
	}

	record, err := entity.ToRecord(normalized)
	if err != nil {
		metrics.RecordSubmission(metrics.OutcomeFailed)
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подготовить заявку")
	}

	created, err := uc.proposalRepo.Insert(ctx, record)
	if err != nil {
		metrics.RecordSubmission(metrics.OutcomeFailed)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.ErrCodePersistence, "не удалось сохранить заявку")
	}
	metrics.RecordSubmission(metrics.OutcomeCreated)

	publish(uc.events, EventProposalSubmitted, created)
	return created, nil
}

// Submit реализует form.Submitter.
func (uc *SubmitProposalUseCase) Submit(ctx context.Context, draft *entity.ProposalDraft) (*entity.Proposal, error) {
	return uc.Execute(ctx, draft)
}

// publish рассылает событие; ошибка рассылки только логируется, сценарий уже выполнен.
func publish(events EventPublisher, event string, data any) {
	if events == nil {
		return
	}
	if err := events.Broadcast(event, data); err != nil {
		logger.Entry(logrus.Fields{"event": event, "error": err.Error()}).Warn("proposal: не удалось разослать событие")
	}
}
