package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/towncore/townsim/internal/component"
	"github.com/towncore/townsim/internal/core/ecs"
	"github.com/towncore/townsim/internal/world"
)

// PersonEntry is one seeded person. Key is local to the seed file and only
// used by FamilyEntry to refer to it.
type PersonEntry struct {
	Key         string          `yaml:"key"`
	Name        string          `yaml:"name"`
	Gender      string          `yaml:"gender"`
	WishedArea  string          `yaml:"wished_area"`
	AgeDays     uint64          `yaml:"age_days"`
	Instruction InstructionSpec `yaml:"instruction"`
	Attributes  AttributesSpec  `yaml:"attributes"`
}

// InstructionSpec: area and months are read only for level "experience".
type InstructionSpec struct {
	Level  string `yaml:"level"`
	Area   string `yaml:"area"`
	Months int32  `yaml:"months"`
}

type AttributesSpec struct {
	Intelligence uint8 `yaml:"intelligence"`
	Beauty       uint8 `yaml:"beauty"`
	Speak        uint8 `yaml:"speak"`
	Health       uint8 `yaml:"health"`
}

type FamilyEntry struct {
	Father   string   `yaml:"father"`
	Mother   string   `yaml:"mother"`
	Children []string `yaml:"children"`
	AgeDays  uint64   `yaml:"age_days"`
}

type populationFile struct {
	Persons  []PersonEntry `yaml:"persons"`
	Families []FamilyEntry `yaml:"families"`
}

// Population is a parsed, validated seed file.
type Population struct {
	Persons  []PersonEntry
	Families []FamilyEntry
}

// LoadPopulation loads a population seed from a YAML file.
func LoadPopulation(path string) (*Population, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read population: %w", err)
	}
	return ParsePopulation(raw)
}

func ParsePopulation(raw []byte) (*Population, error) {
	var f populationFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse population: %w", err)
	}
	keys := make(map[string]bool, len(f.Persons))
	for i, p := range f.Persons {
		if p.Key == "" {
			return nil, fmt.Errorf("person %d: missing key", i)
		}
		if keys[p.Key] {
			return nil, fmt.Errorf("person %d: duplicate key %q", i, p.Key)
		}
		keys[p.Key] = true
	}
	for i, fam := range f.Families {
		for _, k := range append([]string{fam.Father, fam.Mother}, fam.Children...) {
			if !keys[k] {
				return nil, fmt.Errorf("family %d: unknown person %q", i, k)
			}
		}
	}
	return &Population{Persons: f.Persons, Families: f.Families}, nil
}

// Count returns the number of seeded persons and families.
func (p *Population) Count() (persons, families int) {
	return len(p.Persons), len(p.Families)
}

func (e PersonEntry) build() (*world.Person, error) {
	gender, err := component.ParseGender(e.Gender)
	if err != nil {
		return nil, err
	}
	wished, err := component.ParseWorkingArea(e.WishedArea)
	if err != nil {
		return nil, err
	}
	level, err := e.Instruction.build()
	if err != nil {
		return nil, err
	}
	attrs := component.Attributes{
		Intelligence: e.Attributes.Intelligence,
		Beauty:       e.Attributes.Beauty,
		Speak:        e.Attributes.Speak,
		Health:       e.Attributes.Health,
	}
	return world.NewPersonWithAge(e.Name, gender, wished, e.AgeDays, level, attrs), nil
}

func (s InstructionSpec) build() (component.InstructionLevel, error) {
	if s.Level == "" {
		return component.NoInstruction, nil
	}
	lvl, err := component.ParseLevel(s.Level)
	if err != nil {
		return component.InstructionLevel{}, err
	}
	if lvl != component.LevelExperience {
		return component.InstructionLevel{Level: lvl}, nil
	}
	area, err := component.ParseWorkingArea(s.Area)
	if err != nil {
		return component.InstructionLevel{}, fmt.Errorf("experience: %w", err)
	}
	return component.Experience(area, s.Months), nil
}

// Seed registers every person in file order, then forms every family in
// file order. It returns the ID assigned to each person key.
func Seed(ws *world.State, pop *Population, tick uint64) (map[string]ecs.EntityID, error) {
	ids := make(map[string]ecs.EntityID, len(pop.Persons))
	for _, e := range pop.Persons {
		p, err := e.build()
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", e.Key, err)
		}
		id, err := ws.AddPerson(p, tick)
		if err != nil {
			return nil, fmt.Errorf("person %q: %w", e.Key, err)
		}
		ids[e.Key] = id
	}

	resolve := func(key string) (*world.Person, error) {
		return ws.Person(ids[key])
	}
	for i, e := range pop.Families {
		father, err := resolve(e.Father)
		if err != nil {
			return nil, fmt.Errorf("family %d father: %w", i, err)
		}
		mother, err := resolve(e.Mother)
		if err != nil {
			return nil, fmt.Errorf("family %d mother: %w", i, err)
		}
		children := make([]*world.Person, 0, len(e.Children))
		for _, k := range e.Children {
			c, err := resolve(k)
			if err != nil {
				return nil, fmt.Errorf("family %d child: %w", i, err)
			}
			children = append(children, c)
		}
		f, err := world.NewFamilyWithChildrenAndAge(father, mother, children, e.AgeDays)
		if err != nil {
			return nil, fmt.Errorf("family %d: %w", i, err)
		}
		if _, err := ws.FormFamily(f); err != nil {
			return nil, fmt.Errorf("family %d: %w", i, err)
		}
	}
	return ids, nil
}
