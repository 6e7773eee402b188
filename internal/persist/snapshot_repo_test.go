package persist

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/towncore/townsim/internal/component"
	"github.com/towncore/townsim/internal/core/event"
	"github.com/towncore/townsim/internal/world"
)

func columnArgs(t *testing.T, cols []string, args []any) map[string]any {
	t.Helper()
	require.Len(t, args, len(cols))
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		m[c] = args[i]
	}
	return m
}

func TestUpsertOverwritesEveryColumn(t *testing.T) {
	for _, tc := range []struct {
		sql  string
		cols []string
	}{
		{upsertPersonSQL, personColumns},
		{upsertFamilySQL, familyColumns},
	} {
		assert.Contains(t, tc.sql, fmt.Sprintf("$%d)", len(tc.cols)))
		assert.NotContains(t, tc.sql, "EXCLUDED.id")
		for _, c := range tc.cols[1:] {
			assert.Contains(t, tc.sql, c+" = EXCLUDED."+c)
		}
	}
	assert.Contains(t, upsertFamilySQL, "father_id = EXCLUDED.father_id")
	assert.Contains(t, upsertFamilySQL, "mother_id = EXCLUDED.mother_id")
	assert.Contains(t, upsertPersonSQL, "name = EXCLUDED.name")
	assert.Contains(t, upsertPersonSQL, "gender = EXCLUDED.gender")
}

func TestPersonArgsFollowColumns(t *testing.T) {
	s := BuildSnapshot(seededState(t), 9)

	father := columnArgs(t, personColumns, personArgs(s.Persons[0], 9))
	assert.Equal(t, int64(1), father["id"])
	assert.Equal(t, "F", father["name"])
	assert.Equal(t, "male", father["gender"])
	assert.Equal(t, "experience", father["instruction_level"])
	assert.Equal(t, s.Persons[0].InstructionArea, father["instruction_area"])
	assert.Equal(t, int32(12), father["instruction_months"])
	assert.Equal(t, "driving", father["wished_area"])
	assert.Equal(t, int16(10), father["intelligence"])
	assert.Equal(t, int16(20), father["beauty"])
	assert.Equal(t, int16(30), father["speak"])
	assert.Equal(t, int16(0), father["health"])
	assert.Equal(t, true, father["alive"])
	assert.Equal(t, s.Persons[0].ActualFamily, father["actual_family"])
	assert.Equal(t, int64(9), father["updated_tick"])

	mother := columnArgs(t, personColumns, personArgs(s.Persons[1], 9))
	assert.Equal(t, s.Persons[1].WorkingArea, mother["working_area"])

	child := columnArgs(t, personColumns, personArgs(s.Persons[2], 9))
	assert.Equal(t, s.Persons[2].OriginalFamily, child["original_family"])
}

// A second process forms family #1 from different persons; the row it
// writes must carry the new parents.
func TestFamilyArgsCarryCurrentParents(t *testing.T) {
	ws := world.NewState(event.NewBus(), zaptest.NewLogger(t))
	var persons []*world.Person
	for _, g := range []component.Gender{component.Male, component.Female, component.Male, component.Female} {
		p := world.NewPerson("p", g, component.Health, component.Attributes{})
		_, err := ws.AddPerson(p, 0)
		require.NoError(t, err)
		persons = append(persons, p)
	}
	fam, err := world.NewFamily(persons[2], persons[3])
	require.NoError(t, err)
	_, err = ws.FormFamily(fam)
	require.NoError(t, err)

	s := BuildSnapshot(ws, 5)
	row := columnArgs(t, familyColumns, familyArgs(s.Families[0], 5))
	assert.Equal(t, int64(1), row["id"])
	assert.Equal(t, int64(3), row["father_id"])
	assert.Equal(t, int64(4), row["mother_id"])
	assert.Equal(t, int64(0), row["age"])
	assert.Equal(t, int64(5), row["updated_tick"])
}

func TestSaveRequiresRun(t *testing.T) {
	repo := NewSnapshotRepo(nil)
	written, err := repo.Save(context.Background(), BuildSnapshot(seededState(t), 1))
	require.ErrorIs(t, err, ErrNoRun)
	assert.False(t, written)
	assert.Zero(t, repo.RunID())
}

func TestSaveSkipsUnchangedSnapshot(t *testing.T) {
	snap := BuildSnapshot(seededState(t), 1)
	repo := &SnapshotRepo{runID: 1, last: snap.Checksum, hasLast: true}

	written, err := repo.Save(context.Background(), BuildSnapshot(seededState(t), 2))
	require.NoError(t, err)
	assert.False(t, written)
}
