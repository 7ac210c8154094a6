package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// FieldMap одна строка таблицы переименования: логическое поле -> колонка.
type FieldMap struct {
	Logical  string
	Column   string
	Nullable bool
}

// FieldMapping фиксированная таблица переименования полей заявки в колонки project_proposals.
var FieldMapping = []FieldMap{
	{Logical: "leads", Column: "leads"},
	{Logical: "problemStatement", Column: "problem_statement"},
	{Logical: "goal", Column: "goal"},
	{Logical: "objectives", Column: "objectives"},
	{Logical: "teamRoles", Column: "team_roles", Nullable: true},
	{Logical: "seedActivity", Column: "seed_activity", Nullable: true},
	{Logical: "timeline", Column: "timeline"},
	{Logical: "expectedExpenses", Column: "expected_expenses"},
	{Logical: "expectedOutcomes", Column: "expected_outcomes"},
}

// ColumnFor возвращает имя колонки для логического поля.
func ColumnFor(logical string) (string, bool) {
	for _, f := range FieldMapping {
		if f.Logical == logical {
			return f.Column, true
		}
	}
	return "", false
}

// Record строка project_proposals. JSON колонки хранятся как сырые байты.
type Record struct {
	ID               int64     `db:"id"`
	SubmittedAt      time.Time `db:"submitted_at"`
	Leads            []byte    `db:"leads"`
	ProblemStatement []byte    `db:"problem_statement"`
	Goal             []byte    `db:"goal"`
	Objectives       []byte    `db:"objectives"`
	TeamRoles        []byte    `db:"team_roles"`
	SeedActivity     []byte    `db:"seed_activity"`
	Timeline         []byte    `db:"timeline"`
	ExpectedExpenses []byte    `db:"expected_expenses"`
	ExpectedOutcomes []byte    `db:"expected_outcomes"`
}

// column возвращает указатель на поле записи по имени колонки.
func (r *Record) column(name string) *[]byte {
	switch name {
	case "leads":
		return &r.Leads
	case "problem_statement":
		return &r.ProblemStatement
	case "goal":
		return &r.Goal
	case "objectives":
		return &r.Objectives
	case "team_roles":
		return &r.TeamRoles
	case "seed_activity":
		return &r.SeedActivity
	case "timeline":
		return &r.Timeline
	case "expected_expenses":
		return &r.ExpectedExpenses
	case "expected_outcomes":
		return &r.ExpectedOutcomes
	}
	return nil
}

// Values возвращает значения колонок в порядке FieldMapping.
// JSON передаётся строкой (lib/pq кодирует []byte как bytea), NULL как nil.
func (r *Record) Values() []any {
	out := make([]any, 0, len(FieldMapping))
	for _, f := range FieldMapping {
		raw := *r.column(f.Column)
		if raw == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, string(raw))
	}
	return out
}

// ToRecord раскладывает черновик по колонкам согласно FieldMapping.
// Пустой teamRoles и отсутствующий seedActivity сохраняются как NULL.
func ToRecord(d *ProposalDraft) (*Record, error) {
	logical := map[string]any{
		"leads":            d.Leads,
		"problemStatement": d.ProblemStatement,
		"goal":             d.Goal,
		"objectives":       d.Objectives,
		"teamRoles":        d.TeamRoles,
		"seedActivity":     d.SeedActivity,
		"timeline":         d.Timeline,
		"expectedExpenses": d.ExpectedExpenses,
		"expectedOutcomes": d.ExpectedOutcomes,
	}

	rec := &Record{}
	for _, f := range FieldMapping {
		v := logical[f.Logical]
		if f.Nullable && isAbsent(v) {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("entity: не удалось сериализовать %s: %w", f.Logical, err)
		}
		*rec.column(f.Column) = raw
	}
	return rec, nil
}

func isAbsent(v any) bool {
	switch t := v.(type) {
	case []TeamRole:
		return len(t) == 0
	case *SeedActivity:
		return t == nil
	}
	return v == nil
}

// ToProposal собирает заявку из строки таблицы.
func (r *Record) ToProposal() (*Proposal, error) {
	p := &Proposal{ID: r.ID, SubmittedAt: r.SubmittedAt}
	targets := map[string]any{
		"leads":            &p.Leads,
		"problemStatement": &p.ProblemStatement,
		"goal":             &p.Goal,
		"objectives":       &p.Objectives,
		"teamRoles":        &p.TeamRoles,
		"seedActivity":     &p.SeedActivity,
		"timeline":         &p.Timeline,
		"expectedExpenses": &p.ExpectedExpenses,
		"expectedOutcomes": &p.ExpectedOutcomes,
	}
	for _, f := range FieldMapping {
		raw := *r.column(f.Column)
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, targets[f.Logical]); err != nil {
			return nil, fmt.Errorf("entity: не удалось разобрать колонку %s заявки %d: %w", f.Column, r.ID, err)
		}
	}
	return p, nil
}
