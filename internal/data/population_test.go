package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/towncore/townsim/internal/component"
	"github.com/towncore/townsim/internal/config"
	"github.com/towncore/townsim/internal/core/ecs"
	"github.com/towncore/townsim/internal/core/event"
	coresys "github.com/towncore/townsim/internal/core/system"
	"github.com/towncore/townsim/internal/world"
)

const sample = `
persons:
  - key: f
    name: Father
    gender: male
    wished_area: construction
    age_days: 10000
    instruction: { level: experience, area: driving, months: 24 }
    attributes: { intelligence: 1, beauty: 2, speak: 3, health: 4 }
  - key: m
    name: Mother
    gender: F
    wished_area: Health
    age_days: 9000
    instruction: { level: advanced }
  - key: c
    name: Child
    gender: female
    wished_area: education
families:
  - father: f
    mother: m
    children: [c]
    age_days: 300
`

func TestSeedBuildsWiredPopulation(t *testing.T) {
	pop, err := ParsePopulation([]byte(sample))
	require.NoError(t, err)
	persons, families := pop.Count()
	assert.Equal(t, 3, persons)
	assert.Equal(t, 1, families)

	ws := world.NewState(event.NewBus(), zaptest.NewLogger(t))
	ids, err := Seed(ws, pop, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]ecs.EntityID{"f": 1, "m": 2, "c": 3}, ids)

	father, err := ws.Person(ids["f"])
	require.NoError(t, err)
	assert.Equal(t, "Father", father.Name())
	assert.Equal(t, uint64(10000), father.Age())
	assert.Equal(t, component.Experience(component.Driving, 24), father.Instruction())
	assert.Equal(t, component.Attributes{Intelligence: 1, Beauty: 2, Speak: 3, Health: 4}, father.Attributes())

	mother, err := ws.Person(ids["m"])
	require.NoError(t, err)
	assert.Equal(t, component.Female, mother.Gender())
	assert.Equal(t, component.Health, mother.WishedArea())
	assert.Equal(t, component.AdvancedInstruction, mother.Instruction())

	child, err := ws.Person(ids["c"])
	require.NoError(t, err)
	assert.Equal(t, component.NoInstruction, child.Instruction())

	fam, err := ws.Family(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), fam.Age())
	assert.Equal(t, ecs.EntityID(1), father.ActualFamily())
	assert.Equal(t, ecs.EntityID(1), mother.ActualFamily())
	assert.Equal(t, ecs.EntityID(1), child.OriginalFamily())
}

func TestParsePopulationRejectsBadReferences(t *testing.T) {
	_, err := ParsePopulation([]byte("persons:\n  - key: a\n  - key: a\n"))
	assert.ErrorContains(t, err, "duplicate key")

	_, err = ParsePopulation([]byte("persons:\n  - name: nobody\n"))
	assert.ErrorContains(t, err, "missing key")

	_, err = ParsePopulation([]byte("persons:\n  - key: a\nfamilies:\n  - father: a\n    mother: ghost\n"))
	assert.ErrorContains(t, err, `unknown person "ghost"`)

	_, err = ParsePopulation([]byte("persons: [\n"))
	assert.ErrorContains(t, err, "parse population")
}

func TestSeedRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"gender": "persons:\n  - key: a\n    gender: other\n    wished_area: health\n",
		"area":   "persons:\n  - key: a\n    gender: male\n    wished_area: farming\n",
		"level":  "persons:\n  - key: a\n    gender: male\n    wished_area: health\n    instruction: { level: phd }\n",
		"exp":    "persons:\n  - key: a\n    gender: male\n    wished_area: health\n    instruction: { level: experience }\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			pop, err := ParsePopulation([]byte(src))
			require.NoError(t, err)
			ws := world.NewState(event.NewBus(), zaptest.NewLogger(t))
			_, err = Seed(ws, pop, 0)
			assert.ErrorContains(t, err, `person "a"`)
		})
	}
}

func TestSeedStrictGenders(t *testing.T) {
	src := "persons:\n" +
		"  - { key: a, gender: female, wished_area: health }\n" +
		"  - { key: b, gender: female, wished_area: health }\n" +
		"families:\n  - { father: a, mother: b }\n"
	pop, err := ParsePopulation([]byte(src))
	require.NoError(t, err)

	ws := world.NewState(event.NewBus(), zaptest.NewLogger(t), world.WithStrictGenders(true))
	_, err = Seed(ws, pop, 0)
	assert.ErrorIs(t, err, world.ErrInvalidFamily)
}

func TestLoadShippedPopulation(t *testing.T) {
	pop, err := LoadPopulation(filepath.Join("..", "..", "data", "yaml", "population.yaml"))
	require.NoError(t, err)

	ws := world.NewState(event.NewBus(), zaptest.NewLogger(t), world.WithStrictGenders(true))
	_, err = Seed(ws, pop, 0)
	require.NoError(t, err)
	assert.Equal(t, world.Census{Persons: 6, Alive: 6, Families: 2}, ws.Census())

	_, err = LoadPopulation(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// Seeded ages hold until the first tick; after that age follows the
// configured start tick.
func TestShippedSeedAgesFollowStartTick(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "config", "townsim.toml"))
	require.NoError(t, err)
	pop, err := LoadPopulation(filepath.Join("..", "..", cfg.Simulation.PopulationFile))
	require.NoError(t, err)

	ws := world.NewState(event.NewBus(), zaptest.NewLogger(t))
	ids, err := Seed(ws, pop, cfg.Simulation.StartTick)
	require.NoError(t, err)

	anton, err := ws.Person(ids["anton"])
	require.NoError(t, err)
	assert.Equal(t, uint64(12410), anton.Age())

	anton.Iterate(cfg.Simulation.StartTick)
	assert.Equal(t, coresys.TickToDay(cfg.Simulation.StartTick), anton.Age())
	assert.True(t, anton.Alive())
}
