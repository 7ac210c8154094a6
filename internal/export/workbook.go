package export

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/domain/valueobject"
)

const (
	Title        = "SEED Project Proposals - Admin Export"
	InfoSheet    = "Export Info"
	NoData       = "No data available"
	notAvailable = "N/A"

	maxSheetName = 31
	goalPreview  = 100

	dateLayout = "1/2/2006"
	timeLayout = "3:04:05 PM"
)

// Sheet именованная таблица. У листа с метаданными нет заголовков.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Empty сообщает, что в разделе нет строк.
func (s Sheet) Empty() bool {
	return len(s.Rows) == 0
}

// Info сводка, которая попадает на лист "Export Info".
type Info struct {
	GeneratedAt    time.Time
	TotalProposals int
	TotalBudget    valueobject.Money
	UniqueLeads    int
}

// Workbook набор листов выгрузки: разделы по порядку, затем метаданные.
type Workbook struct {
	Sections []Sheet
	Info     Info
}

// Sheets возвращает все листы, включая лист метаданных последним.
func (w *Workbook) Sheets() []Sheet {
	out := make([]Sheet, 0, len(w.Sections)+1)
	out = append(out, w.Sections...)
	return append(out, w.InfoSheet())
}

// InfoSheet собирает лист метаданных.
func (w *Workbook) InfoSheet() Sheet {
	return Sheet{
		Name: InfoSheet,
		Rows: [][]string{
			{Title},
			{"Generated on:", w.Info.GeneratedAt.Format(dateLayout)},
			{"Generated at:", w.Info.GeneratedAt.Format(timeLayout)},
			{"Total Proposals:", strconv.Itoa(w.Info.TotalProposals)},
			{"Total Budget Requested:", w.Info.TotalBudget.String()},
			{"Unique Project Leads:", strconv.Itoa(w.Info.UniqueLeads)},
		},
	}
}

// BuildWorkbook раскладывает заявки по листам. Номер заявки это её позиция в list, начиная с 1;
// каждая строка дочернего листа помечена номером и основным руководителем.
func BuildWorkbook(list []*entity.Proposal, now time.Time) *Workbook {
	b := &builder{list: list}
	wb := &Workbook{
		Sections: []Sheet{
			b.summary(),
			b.leads(),
			b.problemStatements(),
			b.goals(),
			b.objectives(),
			b.teamRoles(),
			b.timeline(),
			b.expenses(),
			b.outcomes(),
			b.seedActivities(),
		},
		Info: Info{GeneratedAt: now, TotalProposals: len(list), TotalBudget: valueobject.NewMoney(0)},
	}

	emails := make(map[string]struct{})
	for _, p := range list {
		wb.Info.TotalBudget = wb.Info.TotalBudget.Add(p.TotalBudget())
		for _, l := range p.Leads {
			emails[l.Email] = struct{}{}
		}
	}
	wb.Info.UniqueLeads = len(emails)
	return wb
}

// SanitizeSheetName убирает символы, запрещённые в именах листов, и обрезает до 31 символа.
func SanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '?', '*', '[', ']', ':':
			return -1
		}
		return r
	}, name)
	if utf8.RuneCountInString(cleaned) <= maxSheetName {
		return cleaned
	}
	return string([]rune(cleaned)[:maxSheetName])
}

// DefaultFilename имя файла выгрузки без расширения: prefix-YYYY-MM-DD.
func DefaultFilename(prefix string, now time.Time) string {
	return prefix + "-" + now.UTC().Format("2006-01-02")
}

type builder struct {
	list []*entity.Proposal
}

func (b *builder) each(fn func(n string, p *entity.Proposal)) {
	for i, p := range b.list {
		fn(strconv.Itoa(i+1), p)
	}
}

func (b *builder) summary() Sheet {
	s := Sheet{Name: "Summary", Headers: []string{
		"Proposal #", "Proposal ID", "Submission Date", "Primary Lead", "Primary Email", "Project Goal",
		"Total Budget", "Number of Objectives", "Timeline Items", "Expense Items",
	}}
	b.each(func(n string, p *entity.Proposal) {
		email := notAvailable
		if lead := p.PrimaryLead(); lead != nil && lead.Email != "" {
			email = lead.Email
		}
		s.Rows = append(s.Rows, []string{
			n,
			strconv.FormatInt(p.ID, 10),
			p.SubmittedAt.Format(dateLayout),
			primaryLead(p),
			email,
			preview(p.Goal.OverarchingAim),
			p.TotalBudget().String(),
			strconv.Itoa(len(p.Objectives)),
			strconv.Itoa(len(p.Timeline)),
			strconv.Itoa(len(p.ExpectedExpenses)),
		})
	})
	return s
}

func (b *builder) leads() Sheet {
	s := Sheet{Name: "Project Leads", Headers: []string{"Proposal #", "Lead #", "Name", "Email", "Phone", "Submission Date"}}
	b.each(func(n string, p *entity.Proposal) {
		for i, l := range p.Leads {
			s.Rows = append(s.Rows, []string{n, strconv.Itoa(i + 1), l.Name, l.Email, l.Phone, p.SubmittedAt.Format(dateLayout)})
		}
	})
	return s
}

func (b *builder) problemStatements() Sheet {
	s := Sheet{Name: "Problem Statements", Headers: []string{
		"Proposal #", "Primary Lead", "Environmental Issue", "Why It Matters", "Past Attempts", "Evidence and Lessons",
	}}
	b.each(func(n string, p *entity.Proposal) {
		ps := p.ProblemStatement
		s.Rows = append(s.Rows, []string{n, primaryLead(p), ps.EnvironmentalIssue, ps.WhyItMatters, ps.PastAttempts, ps.EvidenceAndLessons})
	})
	return s
}

func (b *builder) goals() Sheet {
	s := Sheet{Name: "Project Goals", Headers: []string{
		"Proposal #", "Primary Lead", "Overarching Aim", "How It Addresses Problem", "Approach", "Expected Learning",
	}}
	b.each(func(n string, p *entity.Proposal) {
		g := p.Goal
		s.Rows = append(s.Rows, []string{n, primaryLead(p), g.OverarchingAim, g.HowItAddressesProblem, g.Approach, g.ExpectedLearning})
	})
	return s
}

func (b *builder) objectives() Sheet {
	s := Sheet{Name: "Objectives", Headers: []string{"Proposal #", "Primary Lead", "Objective #", "Description"}}
	b.each(func(n string, p *entity.Proposal) {
		for i, o := range p.Objectives {
			s.Rows = append(s.Rows, []string{n, primaryLead(p), strconv.Itoa(i + 1), o})
		}
	})
	return s
}

func (b *builder) teamRoles() Sheet {
	s := Sheet{Name: "Team Roles", Headers: []string{"Proposal #", "Primary Lead", "Role #", "Role", "Team Member", "Responsibilities"}}
	b.each(func(n string, p *entity.Proposal) {
		for i, r := range p.TeamRoles {
			s.Rows = append(s.Rows, []string{n, primaryLead(p), strconv.Itoa(i + 1), r.Role, r.TeamMember, r.Responsibilities})
		}
	})
	return s
}

func (b *builder) timeline() Sheet {
	s := Sheet{Name: "Timeline", Headers: []string{
		"Proposal #", "Primary Lead", "Timeline Item #", "Task", "Deliverable", "Start Date", "End Date", "Responsible Party",
	}}
	b.each(func(n string, p *entity.Proposal) {
		for i, t := range p.Timeline {
			s.Rows = append(s.Rows, []string{
				n, primaryLead(p), strconv.Itoa(i + 1), t.Task, t.Deliverable, t.StartDate, t.EndDate,
				orDefault(t.ResponsibleParty, "Not specified"),
			})
		}
	})
	return s
}

func (b *builder) expenses() Sheet {
	s := Sheet{Name: "Expenses", Headers: []string{"Proposal #", "Primary Lead", "Expense Item #", "Item", "Purpose", "Cost", "Link"}}
	b.each(func(n string, p *entity.Proposal) {
		for i, e := range p.ExpectedExpenses {
			s.Rows = append(s.Rows, []string{
				n, primaryLead(p), strconv.Itoa(i + 1), e.Item, e.Purpose, e.Cost, orDefault(e.Link, "Not provided"),
			})
		}
	})
	return s
}

func (b *builder) outcomes() Sheet {
	s := Sheet{Name: "Expected Outcomes", Headers: []string{
		"Proposal #", "Primary Lead", "Expected Accomplishments", "Final Deliverable", "Contribution to SEED",
	}}
	b.each(func(n string, p *entity.Proposal) {
		o := p.ExpectedOutcomes
		s.Rows = append(s.Rows, []string{n, primaryLead(p), o.Accomplishments, o.FinalDeliverable, o.ContributionToSEED})
	})
	return s
}

func (b *builder) seedActivities() Sheet {
	s := Sheet{Name: "SEED Activities", Headers: []string{
		"Proposal #", "Primary Lead", "Activity Description", "Date and Location", "Relevance",
	}}
	b.each(func(n string, p *entity.Proposal) {
		if p.SeedActivity == nil {
			return
		}
		a := p.SeedActivity
		s.Rows = append(s.Rows, []string{n, primaryLead(p), a.What, a.WhenWhere, a.Why})
	})
	return s
}

func primaryLead(p *entity.Proposal) string {
	if lead := p.PrimaryLead(); lead != nil && lead.Name != "" {
		return lead.Name
	}
	return notAvailable
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= goalPreview {
		return s
	}
	return string(r[:goalPreview]) + "..."
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
