package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/draft"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
)

type recordingObserver struct {
	snapshots []*entity.ProposalDraft
}

func (r *recordingObserver) Save(d *entity.ProposalDraft) {
	r.snapshots = append(r.snapshots, d)
}

func TestModel_SetFieldPaths(t *testing.T) {
	m := NewModel(nil, nil)

	require.NoError(t, m.SetField("leads.0.email", "jd@rutgers.edu"))
	require.NoError(t, m.SetField("problemStatement.environmentalIssue", "runoff"))
	require.NoError(t, m.SetField("goal.approach", "bioswales"))
	require.NoError(t, m.SetField("objectives.0", "plant"))
	require.NoError(t, m.SetField("timeline.0.responsibleParty", "SEED"))
	require.NoError(t, m.SetField("expectedExpenses.0.cost", "$1,000"))
	require.NoError(t, m.SetField("expectedOutcomes.contributionToSEED", "c"))

	d := m.Draft()
	assert.Equal(t, "jd@rutgers.edu", d.Leads[0].Email)
	assert.Equal(t, "runoff", d.ProblemStatement.EnvironmentalIssue)
	assert.Equal(t, "bioswales", d.Goal.Approach)
	assert.Equal(t, "plant", d.Objectives[0])
	assert.Equal(t, "SEED", d.Timeline[0].ResponsibleParty)
	assert.Equal(t, "$1,000", d.ExpectedExpenses[0].Cost)
	assert.Equal(t, "c", d.ExpectedOutcomes.ContributionToSEED)
	assert.Equal(t, uint64(7), m.Version())
}

func TestModel_SetFieldRejectsBadPaths(t *testing.T) {
	m := NewModel(nil, nil)
	for _, p := range []string{
		"leads.5.name",
		"leads.0.unknown",
		"leads.name",
		"objectives.x",
		"goal",
		"goal.approach.extra",
		"seedActivity.what",
		"teamRoles.0.role",
		"nothing",
	} {
		err := m.SetField(p, "v")
		assert.Error(t, err, p)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr, p)
	}
	assert.Equal(t, uint64(0), m.Version())
}

func TestModel_FieldEditsAreIndependent(t *testing.T) {
	a := NewModel(nil, nil)
	require.NoError(t, a.SetField("goal.approach", "x"))
	require.NoError(t, a.SetField("leads.0.name", "y"))

	b := NewModel(nil, nil)
	require.NoError(t, b.SetField("leads.0.name", "y"))
	require.NoError(t, b.SetField("goal.approach", "x"))

	assert.Equal(t, a.Draft(), b.Draft())
	assert.Equal(t, "", a.Draft().Goal.OverarchingAim)
}

func TestModel_RemoveEntryPreservesOrder(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for i := 0; i < n; i++ {
			m := NewModel(nil, nil)
			require.NoError(t, m.RemoveEntry(GroupObjectives, 0))
			var want []string
			for k := 0; k < n; k++ {
				v := string(rune('a' + k))
				require.NoError(t, m.AddEntry(GroupObjectives, v))
				if k != i {
					want = append(want, v)
				}
			}

			require.NoError(t, m.RemoveEntry(GroupObjectives, i))
			got := m.Draft().Objectives
			assert.Len(t, got, n-1)
			if n > 1 {
				assert.Equal(t, want, got, "n=%d i=%d", n, i)
			}
		}
	}
}

func TestModel_RemoveBelowMinimumIsAllowed(t *testing.T) {
	m := NewModel(nil, nil)
	require.NoError(t, m.RemoveEntry(GroupLeads, 0))
	assert.Equal(t, 0, m.Len(GroupLeads))

	assert.Error(t, m.RemoveEntry(GroupLeads, 0))
	assert.Error(t, m.RemoveEntry(GroupTimeline, -1))
}

func TestModel_AddEntry(t *testing.T) {
	m := NewModel(nil, nil)
	require.NoError(t, m.AddEntry(GroupTeamRoles, entity.TeamRole{Role: "r"}))
	require.NoError(t, m.AddEntry(GroupTeamRoles, nil))
	require.NoError(t, m.AddEntry(GroupExpectedExpenses, entity.ExpenseItem{Cost: "$5"}))

	d := m.Draft()
	assert.Equal(t, []entity.TeamRole{{Role: "r"}, {}}, d.TeamRoles)
	assert.Len(t, d.ExpectedExpenses, 2)

	assert.Error(t, m.AddEntry(GroupLeads, "not a lead"))
	assert.Error(t, m.AddEntry(Group("budget"), nil))

	require.NoError(t, m.SetField("teamRoles.1.teamMember", "Ann"))
	assert.Equal(t, "Ann", m.Draft().TeamRoles[1].TeamMember)
}

func TestModel_SeedActivityToggle(t *testing.T) {
	m := NewModel(nil, nil)
	require.NoError(t, m.SetSeedActivity(true))
	require.NoError(t, m.SetField("seedActivity.what", "cleanup"))
	require.NoError(t, m.SetSeedActivity(true))
	assert.Equal(t, "cleanup", m.Draft().SeedActivity.What)

	require.NoError(t, m.SetSeedActivity(false))
	assert.Nil(t, m.Draft().SeedActivity)
}

func TestModel_EveryMutationSavesSnapshot(t *testing.T) {
	obs := &recordingObserver{}
	m := NewModel(nil, obs)

	require.NoError(t, m.SetField("leads.0.name", "A"))
	require.NoError(t, m.AddEntry(GroupLeads, nil))
	require.NoError(t, m.RemoveEntry(GroupLeads, 1))
	assert.Error(t, m.SetField("bad.path", "x"))

	require.Len(t, obs.snapshots, 3)
	assert.Len(t, obs.snapshots[1].Leads, 2)
	assert.Len(t, obs.snapshots[2].Leads, 1)

	obs.snapshots[2].Leads[0].Name = "mutated outside"
	assert.Equal(t, "A", m.Draft().Leads[0].Name)
}

func TestModel_WritesThroughToDraftStore(t *testing.T) {
	store := draft.NewStore(draft.NewMemoryKV())
	m := NewModel(store.Load(), store)

	require.NoError(t, m.SetField("goal.overarchingAim", "clean water"))
	assert.Equal(t, "clean water", store.Load().Goal.OverarchingAim)

	m.Reset()
	assert.Equal(t, entity.DefaultDraft(), m.Draft())
	assert.Equal(t, "clean water", store.Load().Goal.OverarchingAim)
}

func TestModel_Replace(t *testing.T) {
	m := NewModel(nil, nil)
	d := entity.DefaultDraft()
	d.Objectives = []string{"a", "b"}

	require.NoError(t, m.Replace(d))
	d.Objectives[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, m.Draft().Objectives)
	assert.Error(t, m.Replace(nil))
}
