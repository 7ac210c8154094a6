package form

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

// Group повторяемая группа полей.
type Group string

const (
	GroupLeads            Group = "leads"
	GroupObjectives       Group = "objectives"
	GroupTeamRoles        Group = "teamRoles"
	GroupTimeline         Group = "timeline"
	GroupExpectedExpenses Group = "expectedExpenses"
)

// Groups все повторяемые группы в порядке формы.
var Groups = []Group{GroupLeads, GroupObjectives, GroupTeamRoles, GroupTimeline, GroupExpectedExpenses}

// Observer получает снимок после каждой мутации. draft.Store реализует его.
type Observer interface {
	Save(d *entity.ProposalDraft)
}

// Model владеет черновиком и изменяет его только через адресные операции.
// Нижнюю границу длины групп модель не проверяет, это делает валидация при отправке.
type Model struct {
	mu       sync.Mutex
	draft    *entity.ProposalDraft
	version  uint64
	observer Observer
}

// NewModel создаёт модель. initial == nil означает чистую форму.
func NewModel(initial *entity.ProposalDraft, observer Observer) *Model {
	if initial == nil {
		initial = entity.DefaultDraft()
	}
	return &Model{draft: initial.Clone(), observer: observer}
}

// Draft возвращает копию текущего состояния.
func (m *Model) Draft() *entity.ProposalDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.Clone()
}

// Version растёт на единицу с каждой мутацией.
func (m *Model) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// SetField записывает значение листового поля по пути вида "leads.0.email",
// "goal.approach" или "objectives.2".
func (m *Model) SetField(path, value string) error {
	return m.mutate(func(d *entity.ProposalDraft) error {
		ptr, err := resolve(d, path)
		if err != nil {
			return err
		}
		*ptr = value
		return nil
	})
}

// AddEntry добавляет строку в конец группы. entry == nil добавляет пустую строку.
func (m *Model) AddEntry(group Group, entry any) error {
	return m.mutate(func(d *entity.ProposalDraft) error {
		switch group {
		case GroupLeads:
			return appendEntry(&d.Leads, entry, group)
		case GroupObjectives:
			return appendEntry(&d.Objectives, entry, group)
		case GroupTeamRoles:
			return appendEntry(&d.TeamRoles, entry, group)
		case GroupTimeline:
			return appendEntry(&d.Timeline, entry, group)
		case GroupExpectedExpenses:
			return appendEntry(&d.ExpectedExpenses, entry, group)
		}
		return unknownGroup(group)
	})
}

// RemoveEntry удаляет строку по индексу, сохраняя порядок остальных.
func (m *Model) RemoveEntry(group Group, idx int) error {
	return m.mutate(func(d *entity.ProposalDraft) error {
		switch group {
		case GroupLeads:
			return removeAt(&d.Leads, idx, group)
		case GroupObjectives:
			return removeAt(&d.Objectives, idx, group)
		case GroupTeamRoles:
			return removeAt(&d.TeamRoles, idx, group)
		case GroupTimeline:
			return removeAt(&d.Timeline, idx, group)
		case GroupExpectedExpenses:
			return removeAt(&d.ExpectedExpenses, idx, group)
		}
		return unknownGroup(group)
	})
}

// Len длина группы.
func (m *Model) Len(group Group) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch group {
	case GroupLeads:
		return len(m.draft.Leads)
	case GroupObjectives:
		return len(m.draft.Objectives)
	case GroupTeamRoles:
		return len(m.draft.TeamRoles)
	case GroupTimeline:
		return len(m.draft.Timeline)
	case GroupExpectedExpenses:
		return len(m.draft.ExpectedExpenses)
	}
	return 0
}

// SetSeedActivity включает (пустой блок) или убирает необязательный блок целиком.
// Повторное включение сохраняет уже введённые значения.
func (m *Model) SetSeedActivity(present bool) error {
	return m.mutate(func(d *entity.ProposalDraft) error {
		switch {
		case present && d.SeedActivity == nil:
			d.SeedActivity = &entity.SeedActivity{}
		case !present:
			d.SeedActivity = nil
		}
		return nil
	})
}

// Replace подменяет черновик целиком (импорт из файла).
func (m *Model) Replace(d *entity.ProposalDraft) error {
	if d == nil {
		return apperror.New(apperror.ErrCodeBadRequest, "form: пустой черновик")
	}
	return m.mutate(func(cur *entity.ProposalDraft) error {
		*cur = *d.Clone()
		return nil
	})
}

// Reset возвращает форму к значениям по умолчанию. Снимок не пишется:
// после успешной отправки слот черновика должен остаться пустым.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = entity.DefaultDraft()
	m.version++
}

func (m *Model) mutate(fn func(d *entity.ProposalDraft) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.draft.Clone()
	if err := fn(next); err != nil {
		return err
	}
	m.draft = next
	m.version++
	if m.observer != nil {
		m.observer.Save(next.Clone())
	}
	return nil
}

func appendEntry[T any](items *[]T, entry any, group Group) error {
	var v T
	if entry != nil {
		typed, ok := entry.(T)
		if !ok {
			return apperror.New(apperror.ErrCodeBadRequest,
				fmt.Sprintf("form: строка типа %T не подходит для группы %s", entry, group))
		}
		v = typed
	}
	*items = append(*items, v)
	return nil
}

func removeAt[T any](items *[]T, idx int, group Group) error {
	if idx < 0 || idx >= len(*items) {
		return apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("form: индекс %d вне группы %s длины %d", idx, group, len(*items)))
	}
	*items = slices.Delete(*items, idx, idx+1)
	return nil
}

func unknownGroup(group Group) error {
	return apperror.New(apperror.ErrCodeBadRequest, fmt.Sprintf("form: неизвестная группа %q", group))
}

type accessor[T any] map[string]func(*T) *string

var (
	leadFields = accessor[entity.Lead]{
		"name":  func(l *entity.Lead) *string { return &l.Name },
		"email": func(l *entity.Lead) *string { return &l.Email },
		"phone": func(l *entity.Lead) *string { return &l.Phone },
	}
	problemFields = accessor[entity.ProblemStatement]{
		"environmentalIssue": func(p *entity.ProblemStatement) *string { return &p.EnvironmentalIssue },
		"whyItMatters":       func(p *entity.ProblemStatement) *string { return &p.WhyItMatters },
		"pastAttempts":       func(p *entity.ProblemStatement) *string { return &p.PastAttempts },
		"evidenceAndLessons": func(p *entity.ProblemStatement) *string { return &p.EvidenceAndLessons },
	}
	goalFields = accessor[entity.Goal]{
		"overarchingAim":        func(g *entity.Goal) *string { return &g.OverarchingAim },
		"howItAddressesProblem": func(g *entity.Goal) *string { return &g.HowItAddressesProblem },
		"approach":              func(g *entity.Goal) *string { return &g.Approach },
		"expectedLearning":      func(g *entity.Goal) *string { return &g.ExpectedLearning },
	}
	teamRoleFields = accessor[entity.TeamRole]{
		"role":             func(r *entity.TeamRole) *string { return &r.Role },
		"responsibilities": func(r *entity.TeamRole) *string { return &r.Responsibilities },
		"teamMember":       func(r *entity.TeamRole) *string { return &r.TeamMember },
	}
	seedActivityFields = accessor[entity.SeedActivity]{
		"what":      func(s *entity.SeedActivity) *string { return &s.What },
		"whenWhere": func(s *entity.SeedActivity) *string { return &s.WhenWhere },
		"why":       func(s *entity.SeedActivity) *string { return &s.Why },
	}
	timelineFields = accessor[entity.TimelineItem]{
		"task":             func(t *entity.TimelineItem) *string { return &t.Task },
		"deliverable":      func(t *entity.TimelineItem) *string { return &t.Deliverable },
		"startDate":        func(t *entity.TimelineItem) *string { return &t.StartDate },
		"endDate":          func(t *entity.TimelineItem) *string { return &t.EndDate },
		"responsibleParty": func(t *entity.TimelineItem) *string { return &t.ResponsibleParty },
	}
	expenseFields = accessor[entity.ExpenseItem]{
		"item":    func(e *entity.ExpenseItem) *string { return &e.Item },
		"purpose": func(e *entity.ExpenseItem) *string { return &e.Purpose },
		"cost":    func(e *entity.ExpenseItem) *string { return &e.Cost },
		"link":    func(e *entity.ExpenseItem) *string { return &e.Link },
	}
	outcomeFields = accessor[entity.ExpectedOutcomes]{
		"accomplishments":    func(o *entity.ExpectedOutcomes) *string { return &o.Accomplishments },
		"finalDeliverable":   func(o *entity.ExpectedOutcomes) *string { return &o.FinalDeliverable },
		"contributionToSEED": func(o *entity.ExpectedOutcomes) *string { return &o.ContributionToSEED },
	}
)

// resolve находит строку, на которую указывает путь поля.
func resolve(d *entity.ProposalDraft, path string) (*string, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "leads":
		return indexed(d.Leads, parts, leadFields, path)
	case "teamRoles":
		return indexed(d.TeamRoles, parts, teamRoleFields, path)
	case "timeline":
		return indexed(d.Timeline, parts, timelineFields, path)
	case "expectedExpenses":
		return indexed(d.ExpectedExpenses, parts, expenseFields, path)
	case "problemStatement":
		return fixed(&d.ProblemStatement, parts, problemFields, path)
	case "goal":
		return fixed(&d.Goal, parts, goalFields, path)
	case "expectedOutcomes":
		return fixed(&d.ExpectedOutcomes, parts, outcomeFields, path)
	case "seedActivity":
		if d.SeedActivity == nil {
			return nil, apperror.New(apperror.ErrCodeBadRequest,
				"form: блок seedActivity отсутствует, сначала добавьте его")
		}
		return fixed(d.SeedActivity, parts, seedActivityFields, path)
	case "objectives":
		if len(parts) != 2 {
			return nil, unknownPath(path)
		}
		i, err := index(parts[1], len(d.Objectives), path)
		if err != nil {
			return nil, err
		}
		return &d.Objectives[i], nil
	}
	return nil, unknownPath(path)
}

func indexed[T any](items []T, parts []string, fields accessor[T], path string) (*string, error) {
	if len(parts) != 3 {
		return nil, unknownPath(path)
	}
	i, err := index(parts[1], len(items), path)
	if err != nil {
		return nil, err
	}
	f, ok := fields[parts[2]]
	if !ok {
		return nil, unknownPath(path)
	}
	return f(&items[i]), nil
}

func fixed[T any](target *T, parts []string, fields accessor[T], path string) (*string, error) {
	if len(parts) != 2 {
		return nil, unknownPath(path)
	}
	f, ok := fields[parts[1]]
	if !ok {
		return nil, unknownPath(path)
	}
	return f(target), nil
}

func index(raw string, n int, path string) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 || i >= n {
		return 0, apperror.New(apperror.ErrCodeBadRequest,
			fmt.Sprintf("form: индекс в пути %q вне диапазона", path))
	}
	return i, nil
}

func unknownPath(path string) error {
	return apperror.New(apperror.ErrCodeBadRequest, fmt.Sprintf("form: неизвестный путь поля %q", path))
}
