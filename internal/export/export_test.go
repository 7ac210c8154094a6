package export

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
)

var fixedNow = time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)

func fixture() []*entity.Proposal {
	return []*entity.Proposal{
		{
			ID:          10,
			SubmittedAt: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
			ProposalDraft: entity.ProposalDraft{
				Leads: []entity.Lead{
					{Name: "Jane Doe", Email: "jd@rutgers.edu", Phone: "1"},
					{Name: "Ann", Email: "ann@rutgers.edu"},
				},
				Goal:             entity.Goal{OverarchingAim: strings.Repeat("g", 120)},
				Objectives:       []string{"one", "two"},
				TeamRoles:        []entity.TeamRole{{Role: "PI", Responsibilities: "all", TeamMember: "Jane"}},
				SeedActivity:     &entity.SeedActivity{What: "Walk", WhenWhere: "Fall, Cook", Why: "Learn"},
				Timeline:         []entity.TimelineItem{{Task: "t", Deliverable: "d", StartDate: "2025-01-01", EndDate: "2025-02-01"}},
				ExpectedExpenses: []entity.ExpenseItem{{Item: "Seeds", Cost: "$1,000"}, {Item: "Soil", Cost: "abc"}},
			},
		},
		{
			ID:          11,
			SubmittedAt: time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC),
			ProposalDraft: entity.ProposalDraft{
				Leads:            []entity.Lead{{Name: "Bob", Email: "jd@rutgers.edu"}},
				Goal:             entity.Goal{OverarchingAim: `Say "hi"`},
				Objectives:       []string{"x"},
				Timeline:         []entity.TimelineItem{{Task: "t2", ResponsibleParty: "Bob"}},
				ExpectedExpenses: []entity.ExpenseItem{{Item: "Tools", Cost: "$50.5", Link: "https://example.com"}},
			},
		},
	}
}

func section(t *testing.T, wb *Workbook, name string) Sheet {
	t.Helper()
	for _, s := range wb.Sections {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("лист %q не найден", name)
	return Sheet{}
}

func TestBuildWorkbook_Layout(t *testing.T) {
	wb := BuildWorkbook(fixture(), fixedNow)

	names := make([]string, 0, len(wb.Sheets()))
	for _, s := range wb.Sheets() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Summary", "Project Leads", "Problem Statements", "Project Goals", "Objectives",
		"Team Roles", "Timeline", "Expenses", "Expected Outcomes", "SEED Activities", "Export Info",
	}, names)

	summary := section(t, wb, "Summary")
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, "1", summary.Rows[0][0])
	assert.Equal(t, "10", summary.Rows[0][1])
	assert.Equal(t, "5/20/2025", summary.Rows[0][2])
	assert.Equal(t, "Jane Doe", summary.Rows[0][3])
	assert.Equal(t, strings.Repeat("g", 100)+"...", summary.Rows[0][5])
	assert.Equal(t, "$1,000", summary.Rows[0][6])
	assert.Equal(t, "$50.5", summary.Rows[1][6])

	leads := section(t, wb, "Project Leads")
	assert.Len(t, leads.Rows, 3)
	assert.Equal(t, []string{"1", "2", "Ann", "ann@rutgers.edu", "", "5/20/2025"}, leads.Rows[1])

	timeline := section(t, wb, "Timeline")
	assert.Equal(t, "Not specified", timeline.Rows[0][7])
	assert.Equal(t, "Bob", timeline.Rows[1][7])

	expenses := section(t, wb, "Expenses")
	assert.Equal(t, "Not provided", expenses.Rows[0][6])

	activities := section(t, wb, "SEED Activities")
	require.Len(t, activities.Rows, 1)
	assert.Equal(t, "1", activities.Rows[0][0])

	assert.Equal(t, 2, wb.Info.TotalProposals)
	assert.InDelta(t, 1050.5, wb.Info.TotalBudget.Amount, 1e-9)
	assert.Equal(t, 2, wb.Info.UniqueLeads)
	assert.Equal(t, []string{"Total Budget Requested:", "$1,050.5"}, wb.InfoSheet().Rows[4])
}

func TestBuildWorkbook_NoLeads(t *testing.T) {
	wb := BuildWorkbook([]*entity.Proposal{{ID: 1}}, fixedNow)
	summary := section(t, wb, "Summary")
	assert.Equal(t, "N/A", summary.Rows[0][3])
	assert.Equal(t, "N/A", summary.Rows[0][4])
	assert.True(t, section(t, wb, "Team Roles").Empty())
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Q1 Budget", SanitizeSheetName("Q1/ Budget?"))
	assert.Equal(t, "ab", SanitizeSheetName(`[a]*\b:`))
	assert.Len(t, []rune(SanitizeSheetName(strings.Repeat("x", 40))), 31)
}

func TestDefaultFilename(t *testing.T) {
	assert.Equal(t, "seed-proposals-admin-export-2025-06-01", DefaultFilename("seed-proposals-admin-export", fixedNow))
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVRenderer{}.Render(&buf, BuildWorkbook(fixture(), fixedNow)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\""+Title+"\"\n"))
	assert.Contains(t, out, "\n=== SUMMARY ===\n")
	assert.Contains(t, out, `"Say ""hi"""`)
	assert.Contains(t, out, `"1","Jane Doe","1","PI","Jane","all"`)

	empty := bytes.Buffer{}
	require.NoError(t, CSVRenderer{}.Render(&empty, BuildWorkbook(nil, fixedNow)))
	assert.Contains(t, empty.String(), "=== TEAM ROLES ===\n"+NoData+"\n")
}

func TestXLSXRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXRenderer{}.Render(&buf, BuildWorkbook(fixture(), fixedNow)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	list := f.GetSheetList()
	assert.Equal(t, "Summary", list[0])
	assert.Equal(t, InfoSheet, list[len(list)-1])
	assert.NotContains(t, list, "Sheet1")

	header, err := f.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Proposal #", header)

	lead, err := f.GetCellValue("Summary", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", lead)

	title, err := f.GetCellValue(InfoSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, Title, title)
}

type brokenRenderer struct{}

func (brokenRenderer) Format() string { return "broken" }

func (brokenRenderer) Render(w io.Writer, wb *Workbook) error {
	_, _ = w.Write([]byte("partial"))
	return errors.New("нет движка")
}

func TestRender_FallsBackToCSV(t *testing.T) {
	var buf bytes.Buffer
	format, err := Render(&buf, BuildWorkbook(fixture(), fixedNow), brokenRenderer{}, CSVRenderer{})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)
	assert.False(t, strings.HasPrefix(buf.String(), "partial"))

	_, err = Render(&buf, BuildWorkbook(nil, fixedNow), brokenRenderer{}, nil)
	assert.Error(t, err)
}

func TestRendererFor(t *testing.T) {
	assert.Equal(t, FormatCSV, RendererFor("CSV").Format())
	assert.Equal(t, FormatXLSX, RendererFor("").Format())
}
