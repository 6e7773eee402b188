package world

import (
	"golang.org/x/text/unicode/norm"

	"github.com/towncore/townsim/internal/component"
	"github.com/towncore/townsim/internal/core/ecs"
	coresys "github.com/towncore/townsim/internal/core/system"
)

// Person is an individual. Owned exclusively by the person registry; the
// family back-references are IDs resolved through State, never pointers.
type Person struct {
	id ecs.EntityID

	name        string // display only, not unique
	age         uint64 // days
	gender      component.Gender
	instruction component.InstructionLevel
	wishedArea  component.WorkingArea
	workingArea *component.WorkingArea // nil until employed
	attrs       component.Attributes

	alive     bool
	deathTick uint64 // valid only when !alive

	originalFamily ecs.EntityID // family this person is a child in (0 = none)
	actualFamily   ecs.EntityID // family this person is a parent in (0 = none)
}

// NewPerson creates a newborn: zero days old, no instruction.
func NewPerson(name string, gender component.Gender, wished component.WorkingArea, attrs component.Attributes) *Person {
	return NewPersonWithAge(name, gender, wished, 0, component.NoInstruction, attrs)
}

// NewPersonWithAge creates a person with an explicit age (days) and
// instruction level, for seeding an initial population.
func NewPersonWithAge(name string, gender component.Gender, wished component.WorkingArea, ageDays uint64, level component.InstructionLevel, attrs component.Attributes) *Person {
	return &Person{
		name:        norm.NFC.String(name),
		age:         ageDays,
		gender:      gender,
		instruction: level,
		wishedArea:  wished,
		attrs:       attrs,
		alive:       true,
	}
}

func (p *Person) ID() ecs.EntityID { return p.id }

// BindID is called by the registry on Register.
func (p *Person) BindID(id ecs.EntityID) { p.id = id }

func (p *Person) Name() string { return p.name }
func (p *Person) Age() uint64 { return p.age }
func (p *Person) Gender() component.Gender { return p.gender }
func (p *Person) Instruction() component.InstructionLevel { return p.instruction }
func (p *Person) WishedArea() component.WorkingArea { return p.wishedArea }
func (p *Person) Attributes() component.Attributes { return p.attrs }
func (p *Person) Alive() bool { return p.alive }
func (p *Person) OriginalFamily() ecs.EntityID { return p.originalFamily }
func (p *Person) ActualFamily() ecs.EntityID { return p.actualFamily }

// WorkingArea returns the area the person works in, if any.
func (p *Person) WorkingArea() (component.WorkingArea, bool) {
	if p.workingArea == nil {
		return 0, false
	}
	return *p.workingArea, true
}

// Employ records the area the person now works in. Job matching itself is
// done by the caller.
func (p *Person) Employ(area component.WorkingArea) { p.workingArea = &area }

func (p *Person) Unemploy() { p.workingArea = nil }

// DeathTick returns the tick at which the person died.
func (p *Person) DeathTick() (uint64, bool) {
	if p.alive {
		return 0, false
	}
	return p.deathTick, true
}

// Iterate processes one engine tick using the default LinearLifespan model.
// It reports whether the person died during this call.
func (p *Person) Iterate(tick uint64) bool {
	return p.IterateWith(tick, LinearLifespan{})
}

// IterateWith processes one engine tick: age is recomputed from tick (never
// accumulated), then, once the person is 50 years old, model decides death.
// Death is terminal: a dead person is never revived, whatever tick is passed.
func (p *Person) IterateWith(tick uint64, model MortalityModel) bool {
	p.age = coresys.TickToDay(tick)

	if !p.alive || p.age < MortalityEligibleDay {
		return false
	}
	if model.Expired(p.age, p.attrs.Health) {
		p.alive = false
		p.deathTick = tick
		return true
	}
	return false
}
