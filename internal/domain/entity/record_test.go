package entity

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraft() *ProposalDraft {
	return &ProposalDraft{
		Leads:            []Lead{{Name: "A", Email: "a@rutgers.edu", Phone: "123"}},
		ProblemStatement: ProblemStatement{EnvironmentalIssue: "runoff", WhyItMatters: "w", PastAttempts: "p", EvidenceAndLessons: "e"},
		Goal:             Goal{OverarchingAim: "aim", HowItAddressesProblem: "h", Approach: "a", ExpectedLearning: "l"},
		Objectives:       []string{"x"},
		TeamRoles:        []TeamRole{},
		Timeline:         []TimelineItem{{Task: "t", Deliverable: "d", StartDate: "2025-01-01", EndDate: "2025-02-01"}},
		ExpectedExpenses: []ExpenseItem{{Item: "i", Purpose: "p", Cost: "$1,200.50"}},
		ExpectedOutcomes: ExpectedOutcomes{Accomplishments: "a", FinalDeliverable: "f", ContributionToSEED: "c"},
	}
}

func TestColumnFor(t *testing.T) {
	col, ok := ColumnFor("problemStatement")
	assert.True(t, ok)
	assert.Equal(t, "problem_statement", col)

	col, ok = ColumnFor("expectedExpenses")
	assert.True(t, ok)
	assert.Equal(t, "expected_expenses", col)

	_, ok = ColumnFor("unknown")
	assert.False(t, ok)
}

func TestToRecord_NullableGroups(t *testing.T) {
	rec, err := ToRecord(sampleDraft())
	require.NoError(t, err)

	assert.Nil(t, rec.TeamRoles)
	assert.Nil(t, rec.SeedActivity)
	assert.JSONEq(t, `{"environmentalIssue":"runoff","whyItMatters":"w","pastAttempts":"p","evidenceAndLessons":"e"}`, string(rec.ProblemStatement))

	values := rec.Values()
	require.Len(t, values, len(FieldMapping))
	assert.Nil(t, values[4])
	assert.Nil(t, values[5])
	assert.IsType(t, "", values[0])
}

func TestRecordRoundTrip(t *testing.T) {
	d := sampleDraft()
	d.TeamRoles = []TeamRole{{Role: "r", Responsibilities: "s", TeamMember: "m"}}
	d.SeedActivity = &SeedActivity{What: "w", WhenWhere: "ww", Why: "y"}

	rec, err := ToRecord(d)
	require.NoError(t, err)
	rec.ID = 7
	rec.SubmittedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p, err := rec.ToProposal()
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	if diff := cmp.Diff(*d, p.ProposalDraft); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClone_IsDeep(t *testing.T) {
	d := sampleDraft()
	d.SeedActivity = &SeedActivity{What: "w"}
	c := d.Clone()

	c.Leads[0].Name = "changed"
	c.SeedActivity.What = "changed"
	c.Objectives[0] = "changed"

	assert.Equal(t, "A", d.Leads[0].Name)
	assert.Equal(t, "w", d.SeedActivity.What)
	assert.Equal(t, "x", d.Objectives[0])
}

func TestDefaultDraft(t *testing.T) {
	d := DefaultDraft()
	assert.Len(t, d.Leads, 1)
	assert.Len(t, d.Objectives, 1)
	assert.Len(t, d.Timeline, 1)
	assert.Len(t, d.ExpectedExpenses, 1)
	assert.Empty(t, d.TeamRoles)
	assert.Nil(t, d.SeedActivity)
}

func TestTotalBudget(t *testing.T) {
	d := &ProposalDraft{ExpectedExpenses: []ExpenseItem{
		{Cost: "$1,000"}, {Cost: "abc"}, {Cost: "$50.5"}, {Cost: ""},
	}}
	assert.InDelta(t, 1050.5, d.TotalBudget().Amount, 1e-9)

	assert.Zero(t, (&ProposalDraft{}).TotalBudget().Amount)
}
