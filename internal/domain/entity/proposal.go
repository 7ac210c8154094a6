package entity

import (
	"time"

	"github.com/rutgers-seed/proposal-portal/internal/domain/valueobject"
)

// Lead руководитель проекта.
type Lead struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone" yaml:"phone"`
}

type ProblemStatement struct {
	EnvironmentalIssue string `json:"environmentalIssue" yaml:"environmentalIssue"`
	WhyItMatters       string `json:"whyItMatters" yaml:"whyItMatters"`
	PastAttempts       string `json:"pastAttempts" yaml:"pastAttempts"`
	EvidenceAndLessons string `json:"evidenceAndLessons" yaml:"evidenceAndLessons"`
}

type Goal struct {
	OverarchingAim        string `json:"overarchingAim" yaml:"overarchingAim"`
	HowItAddressesProblem string `json:"howItAddressesProblem" yaml:"howItAddressesProblem"`
	Approach              string `json:"approach" yaml:"approach"`
	ExpectedLearning      string `json:"expectedLearning" yaml:"expectedLearning"`
}

type TeamRole struct {
	Role             string `json:"role" yaml:"role"`
	Responsibilities string `json:"responsibilities" yaml:"responsibilities"`
	TeamMember       string `json:"teamMember" yaml:"teamMember"`
}

// SeedActivity мероприятие для участников SEED, присутствует целиком или отсутствует.
type SeedActivity struct {
	What      string `json:"what" yaml:"what"`
	WhenWhere string `json:"whenWhere" yaml:"whenWhere"`
	Why       string `json:"why" yaml:"why"`
}

type TimelineItem struct {
	Task             string `json:"task" yaml:"task"`
	Deliverable      string `json:"deliverable" yaml:"deliverable"`
	StartDate        string `json:"startDate" yaml:"startDate"`
	EndDate          string `json:"endDate" yaml:"endDate"`
	ResponsibleParty string `json:"responsibleParty,omitempty" yaml:"responsibleParty,omitempty"`
}

// ExpenseItem строка бюджета. Cost хранится как введённая строка.
type ExpenseItem struct {
	Item    string `json:"item" yaml:"item"`
	Purpose string `json:"purpose" yaml:"purpose"`
	Cost    string `json:"cost" yaml:"cost"`
	Link    string `json:"link,omitempty" yaml:"link,omitempty"`
}

type ExpectedOutcomes struct {
	Accomplishments    string `json:"accomplishments" yaml:"accomplishments"`
	FinalDeliverable   string `json:"finalDeliverable" yaml:"finalDeliverable"`
	ContributionToSEED string `json:"contributionToSEED" yaml:"contributionToSEED"`
}

// ProposalDraft незавершённая заявка. Та же форма, что и у сохранённой, но без id и времени.
type ProposalDraft struct {
	Leads            []Lead           `json:"leads" yaml:"leads"`
	ProblemStatement ProblemStatement `json:"problemStatement" yaml:"problemStatement"`
	Goal             Goal             `json:"goal" yaml:"goal"`
	Objectives       []string         `json:"objectives" yaml:"objectives"`
	TeamRoles        []TeamRole       `json:"teamRoles" yaml:"teamRoles"`
	SeedActivity     *SeedActivity    `json:"seedActivity,omitempty" yaml:"seedActivity,omitempty"`
	Timeline         []TimelineItem   `json:"timeline" yaml:"timeline"`
	ExpectedExpenses []ExpenseItem    `json:"expectedExpenses" yaml:"expectedExpenses"`
	ExpectedOutcomes ExpectedOutcomes `json:"expectedOutcomes" yaml:"expectedOutcomes"`
}

// DefaultDraft возвращает пустую форму: по одной строке в обязательных группах,
// необязательные группы отсутствуют.
func DefaultDraft() *ProposalDraft {
	return &ProposalDraft{
		Leads:            []Lead{{}},
		Objectives:       []string{""},
		TeamRoles:        []TeamRole{},
		Timeline:         []TimelineItem{{}},
		ExpectedExpenses: []ExpenseItem{{}},
	}
}

// Clone делает глубокую копию, чтобы наружу не утекали ссылки на внутренние срезы.
func (d *ProposalDraft) Clone() *ProposalDraft {
	if d == nil {
		return nil
	}
	c := *d
	c.Leads = cloneSlice(d.Leads)
	c.Objectives = cloneSlice(d.Objectives)
	c.TeamRoles = cloneSlice(d.TeamRoles)
	c.Timeline = cloneSlice(d.Timeline)
	c.ExpectedExpenses = cloneSlice(d.ExpectedExpenses)
	if d.SeedActivity != nil {
		sa := *d.SeedActivity
		c.SeedActivity = &sa
	}
	return &c
}

// PrimaryLead первый руководитель или nil.
func (d *ProposalDraft) PrimaryLead() *Lead {
	if len(d.Leads) == 0 {
		return nil
	}
	return &d.Leads[0]
}

// TotalBudget сумма расходов; нечисловая стоимость считается нулём.
func (d *ProposalDraft) TotalBudget() valueobject.Money {
	costs := make([]string, 0, len(d.ExpectedExpenses))
	for _, e := range d.ExpectedExpenses {
		costs = append(costs, e.Cost)
	}
	return valueobject.TotalBudget(costs)
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// Proposal сохранённая заявка. ID и SubmittedAt назначает хранилище.
type Proposal struct {
	ID            int64     `json:"id" yaml:"id"`
	SubmittedAt   time.Time `json:"submittedAt" yaml:"submittedAt"`
	ProposalDraft `yaml:",inline"`
}
