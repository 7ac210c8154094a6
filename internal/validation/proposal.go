package validation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

var localPartPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+$`)

// DefaultInstitutionDomains домены, адреса которых принимаются у руководителей проекта.
var DefaultInstitutionDomains = []string{"rutgers.edu", "scarletmail.rutgers.edu"}

// Сообщения показываются пользователю рядом с полем, поэтому на английском.
const (
	msgLeadsMin         = "At least one project lead is required"
	msgObjectivesMin    = "At least one objective is required"
	msgObjectiveEmpty   = "Objective cannot be empty"
	msgTeamRolesPartial = "If team roles are provided, all fields must be completed"
	msgTimelineMin      = "At least one timeline item is required"
	msgExpensesMin      = "At least one expense item is required"
	msgEmailInstitution = "Email must be a valid Rutgers address"
	msgLinkInvalid      = "Must be a valid URL"
)

// Errors путь поля -> сообщение. Каждый путь встречается не больше одного раза.
type Errors map[string]string

func (e Errors) add(path, message string) {
	if _, exists := e[path]; !exists {
		e[path] = message
	}
}

// Paths возвращает отсортированные пути с ошибками.
func (e Errors) Paths() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Err превращает набор в ошибку приложения или nil, если ошибок нет.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperror.Validation(map[string]string(e))
}

// Validator проверяет черновик заявки целиком, не останавливаясь на первой ошибке.
type Validator struct {
	domains []string
}

func NewValidator(domains []string) *Validator {
	if len(domains) == 0 {
		domains = DefaultInstitutionDomains
	}
	return &Validator{domains: domains}
}

// Validate возвращает нормализованную (обрезанные пробелы) копию черновика,
// либо nil и полный набор ошибок.
func (v *Validator) Validate(d *entity.ProposalDraft) (*entity.ProposalDraft, Errors) {
	errs := Errors{}
	if d == nil {
		d = entity.DefaultDraft()
	}
	out := d.Clone()
	c := &checker{errs: errs}

	if len(out.Leads) == 0 {
		errs.add("leads", msgLeadsMin)
	}
	for i := range out.Leads {
		lead := &out.Leads[i]
		p := path("leads", i)
		lead.Name = c.required(p+".name", lead.Name, "Name is required")
		lead.Email = strings.TrimSpace(lead.Email)
		if err := ValidateInstitutionEmail(lead.Email, v.domains); err != nil {
			errs.add(p+".email", msgEmailInstitution)
		}
		lead.Phone = c.required(p+".phone", lead.Phone, "Phone number is required")
	}

	ps := &out.ProblemStatement
	ps.EnvironmentalIssue = c.required("problemStatement.environmentalIssue", ps.EnvironmentalIssue, "Environmental issue description is required")
	ps.WhyItMatters = c.required("problemStatement.whyItMatters", ps.WhyItMatters, "Environmental/social impact explanation is required")
	ps.PastAttempts = c.required("problemStatement.pastAttempts", ps.PastAttempts, "Description of past attempts is required")
	ps.EvidenceAndLessons = c.required("problemStatement.evidenceAndLessons", ps.EvidenceAndLessons, "Evidence of successes/failures and lessons learned is required")

	g := &out.Goal
	g.OverarchingAim = c.required("goal.overarchingAim", g.OverarchingAim, "Overarching aim is required")
	g.HowItAddressesProblem = c.required("goal.howItAddressesProblem", g.HowItAddressesProblem, "How it addresses the problem is required")
	g.Approach = c.required("goal.approach", g.Approach, "Approach description is required")
	g.ExpectedLearning = c.required("goal.expectedLearning", g.ExpectedLearning, "Expected learning outcomes are required")

	if len(out.Objectives) == 0 {
		errs.add("objectives", msgObjectivesMin)
	}
	for i := range out.Objectives {
		out.Objectives[i] = c.required(path("objectives", i), out.Objectives[i], msgObjectiveEmpty)
	}

	for i := range out.TeamRoles {
		r := &out.TeamRoles[i]
		r.Role = strings.TrimSpace(r.Role)
		r.Responsibilities = strings.TrimSpace(r.Responsibilities)
		r.TeamMember = strings.TrimSpace(r.TeamMember)
	}
	if !TeamRolesComplete(out.TeamRoles) {
		errs.add("teamRoles", msgTeamRolesPartial)
	}

	if sa := out.SeedActivity; sa != nil {
		sa.What = c.required("seedActivity.what", sa.What, "Activity description is required")
		sa.WhenWhere = c.required("seedActivity.whenWhere", sa.WhenWhere, "Date and location are required")
		sa.Why = c.required("seedActivity.why", sa.Why, "Relevance explanation is required")
	}

	if len(out.Timeline) == 0 {
		errs.add("timeline", msgTimelineMin)
	}
	for i := range out.Timeline {
		item := &out.Timeline[i]
		p := path("timeline", i)
		item.Task = c.required(p+".task", item.Task, "Task description is required")
		item.Deliverable = c.required(p+".deliverable", item.Deliverable, "Deliverable description is required")
		item.StartDate = c.required(p+".startDate", item.StartDate, "Start date is required")
		item.EndDate = c.required(p+".endDate", item.EndDate, "End date is required")
		item.ResponsibleParty = strings.TrimSpace(item.ResponsibleParty)
	}

	if len(out.ExpectedExpenses) == 0 {
		errs.add("expectedExpenses", msgExpensesMin)
	}
	for i := range out.ExpectedExpenses {
		e := &out.ExpectedExpenses[i]
		p := path("expectedExpenses", i)
		e.Item = c.required(p+".item", e.Item, "Item name is required")
		e.Purpose = c.required(p+".purpose", e.Purpose, "Purpose is required")
		e.Cost = c.required(p+".cost", e.Cost, "Cost is required")
		e.Link = strings.TrimSpace(e.Link)
		if err := ValidateAbsoluteURL(e.Link); err != nil {
			errs.add(p+".link", msgLinkInvalid)
		}
	}

	eo := &out.ExpectedOutcomes
	eo.Accomplishments = c.required("expectedOutcomes.accomplishments", eo.Accomplishments, "Expected accomplishments are required")
	eo.FinalDeliverable = c.required("expectedOutcomes.finalDeliverable", eo.FinalDeliverable, "Final deliverable description is required")
	eo.ContributionToSEED = c.required("expectedOutcomes.contributionToSEED", eo.ContributionToSEED, "Contribution to SEED's mission is required")

	if len(errs) > 0 {
		return nil, errs
	}
	return out, errs
}

// TeamRolesComplete: пустой список допустим, непустой требует заполнения всех полей в каждой строке.
func TeamRolesComplete(roles []entity.TeamRole) bool {
	for _, r := range roles {
		if strings.TrimSpace(r.Role) == "" ||
			strings.TrimSpace(r.Responsibilities) == "" ||
			strings.TrimSpace(r.TeamMember) == "" {
			return false
		}
	}
	return true
}

type checker struct {
	errs Errors
}

// required обрезает значение и регистрирует ошибку, если оно пустое.
func (c *checker) required(path, value, message string) string {
	if err := ValidateNonEmpty(path, value); err != nil {
		c.errs.add(path, message)
	}
	return strings.TrimSpace(value)
}

func path(group string, idx int) string {
	return group + "." + strconv.Itoa(idx)
}
