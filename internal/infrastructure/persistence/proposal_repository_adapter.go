package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

const selectColumns = `id, submitted_at, leads, problem_statement, goal, objectives, team_roles,
		seed_activity, timeline, expected_expenses, expected_outcomes`

type ProposalRepositoryAdapter struct {
	db *sqlx.DB
}

func NewProposalRepositoryAdapter(db *sqlx.DB) *ProposalRepositoryAdapter {
	return &ProposalRepositoryAdapter{db: db}
}

// insertQuery строится из таблицы переименования полей.
var insertQuery = func() string {
	cols := make([]string, len(entity.FieldMapping))
	params := make([]string, len(entity.FieldMapping))
	for i, f := range entity.FieldMapping {
		cols[i] = f.Column
		params[i] = fmt.Sprintf("$%d::jsonb", i+1)
	}
	return fmt.Sprintf(`INSERT INTO project_proposals (%s) VALUES (%s) RETURNING %s`,
		strings.Join(cols, ", "), strings.Join(params, ", "), selectColumns)
}()

func (r *ProposalRepositoryAdapter) Insert(ctx context.Context, record *entity.Record) (*entity.Proposal, error) {
	var row entity.Record
	if err := r.db.GetContext(ctx, &row, insertQuery, record.Values()...); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodePersistence, "не удалось сохранить заявку")
	}
	return toProposal(&row)
}

func (r *ProposalRepositoryAdapter) List(ctx context.Context) ([]*entity.Proposal, error) {
	var rows []entity.Record
	query := `SELECT ` + selectColumns + ` FROM project_proposals ORDER BY submitted_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodePersistence, "не удалось получить заявки")
	}

	result := make([]*entity.Proposal, 0, len(rows))
	for i := range rows {
		p, err := toProposal(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (r *ProposalRepositoryAdapter) FindByID(ctx context.Context, id int64) (*entity.Proposal, error) {
	var row entity.Record
	query := `SELECT ` + selectColumns + ` FROM project_proposals WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrProposalNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodePersistence, "не удалось получить заявку")
	}
	return toProposal(&row)
}

func (r *ProposalRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_proposals WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodePersistence, "не удалось удалить заявку")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodePersistence, "не удалось удалить заявку")
	}
	if n == 0 {
		return apperror.ErrProposalNotFound
	}
	return nil
}

func toProposal(row *entity.Record) (*entity.Proposal, error) {
	p, err := row.ToProposal()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodePersistence, "повреждённая запись заявки")
	}
	return p, nil
}
