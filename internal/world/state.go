package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/towncore/townsim/internal/component"
	"github.com/towncore/townsim/internal/core/ecs"
	"github.com/towncore/townsim/internal/core/event"
)

// State owns both registries. Every cross-entity access (person → family,
// family → person) goes through it by ID.
// Accessed only from the simulation goroutine; no locks needed.
type State struct {
	persons  *ecs.Registry[*Person]
	families *ecs.Registry[*Family]
	bus      *event.Bus
	log      *zap.Logger

	strictGenders bool
}

type Option func(*State)

// WithStrictGenders makes FormFamily reject families whose father is not
// male or whose mother is not female.
func WithStrictGenders(strict bool) Option {
	return func(s *State) { s.strictGenders = strict }
}

func NewState(bus *event.Bus, log *zap.Logger, opts ...Option) *State {
	s := &State{
		persons:  ecs.NewRegistry[*Person](),
		families: ecs.NewRegistry[*Family](),
		bus:      bus,
		log:      log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *State) Persons() *ecs.Registry[*Person] { return s.persons }
func (s *State) Families() *ecs.Registry[*Family] { return s.families }
func (s *State) Bus() *event.Bus { return s.bus }

// AddPerson registers p and announces it.
func (s *State) AddPerson(p *Person, tick uint64) (ecs.EntityID, error) {
	if p == nil {
		return 0, fmt.Errorf("add person: %w", ecs.ErrNilEntity)
	}
	id, err := s.persons.Register(p)
	if err != nil {
		return 0, fmt.Errorf("add person %q: %w", p.Name(), err)
	}
	event.Emit(s.bus, event.PersonRegistered{PersonID: id, Tick: tick})
	return id, nil
}

func (s *State) Person(id ecs.EntityID) (*Person, error) {
	p, err := s.persons.Get(id)
	if err != nil {
		return nil, fmt.Errorf("person: %w", err)
	}
	return p, nil
}

func (s *State) Family(id ecs.EntityID) (*Family, error) {
	f, err := s.families.Get(id)
	if err != nil {
		return nil, fmt.Errorf("family: %w", err)
	}
	return f, nil
}

// FormFamily registers f and propagates its ID into its members. This is
// the only place UpdateReferences is called, exactly once per family.
func (s *State) FormFamily(f *Family) (ecs.EntityID, error) {
	if f == nil {
		return 0, fmt.Errorf("form family: %w", ecs.ErrNilEntity)
	}
	if !f.ID().IsZero() {
		return 0, fmt.Errorf("form family %s: %w", f.ID(), ecs.ErrAlreadyRegistered)
	}
	if err := s.checkMembers(f); err != nil {
		return 0, err
	}

	id, err := s.families.Register(f)
	if err != nil {
		return 0, fmt.Errorf("form family: %w", err)
	}
	s.warnOverwrites(f)
	if err := f.UpdateReferences(s.persons); err != nil {
		// checkMembers resolved every member already; only a broken registry gets here.
		return id, fmt.Errorf("form family %s: %w", id, err)
	}

	event.Emit(s.bus, event.FamilyFormed{
		FamilyID: id,
		Father:   f.Father(),
		Mother:   f.Mother(),
		Children: f.Children(),
	})
	return id, nil
}

// checkMembers resolves every member before anything is registered, so a
// family naming an unknown person never consumes an ID.
func (s *State) checkMembers(f *Family) error {
	father, err := s.persons.Get(f.Father())
	if err != nil {
		return fmt.Errorf("form family father: %w", err)
	}
	mother, err := s.persons.Get(f.Mother())
	if err != nil {
		return fmt.Errorf("form family mother: %w", err)
	}
	for _, id := range f.children {
		if _, err := s.persons.Get(id); err != nil {
			return fmt.Errorf("form family child: %w", err)
		}
	}
	if s.strictGenders {
		if father.Gender() != component.Male {
			return fmt.Errorf("father %s is %s: %w", father.ID(), father.Gender(), ErrInvalidFamily)
		}
		if mother.Gender() != component.Female {
			return fmt.Errorf("mother %s is %s: %w", mother.ID(), mother.Gender(), ErrInvalidFamily)
		}
	}
	return nil
}

// warnOverwrites logs members whose back-reference is about to be replaced.
// The overwrite itself is allowed: the latest family wins.
func (s *State) warnOverwrites(f *Family) {
	for _, id := range f.Parents() {
		if p, err := s.persons.Get(id); err == nil && !p.ActualFamily().IsZero() {
			s.log.Warn("parent already has a family",
				zap.Uint64("person", uint64(id)),
				zap.Uint64("previous", uint64(p.ActualFamily())),
				zap.Uint64("family", uint64(f.ID())))
		}
	}
	for _, id := range f.children {
		if c, err := s.persons.Get(id); err == nil && !c.OriginalFamily().IsZero() {
			s.log.Warn("child already has an original family",
				zap.Uint64("person", uint64(id)),
				zap.Uint64("previous", uint64(c.OriginalFamily())),
				zap.Uint64("family", uint64(f.ID())))
		}
	}
}

// FamilyOf resolves the family the person is a parent in.
func (s *State) FamilyOf(personID ecs.EntityID) (*Family, error) {
	p, err := s.Person(personID)
	if err != nil {
		return nil, err
	}
	if p.ActualFamily().IsZero() {
		return nil, fmt.Errorf("person %s has no family: %w", personID, ecs.ErrNotFound)
	}
	return s.Family(p.ActualFamily())
}

// ParentsOf resolves the family the person is a child in.
func (s *State) ParentsOf(personID ecs.EntityID) (*Family, error) {
	p, err := s.Person(personID)
	if err != nil {
		return nil, err
	}
	if p.OriginalFamily().IsZero() {
		return nil, fmt.Errorf("person %s has no original family: %w", personID, ecs.ErrNotFound)
	}
	return s.Family(p.OriginalFamily())
}

// Members is a resolved view of a family. Dead members stay resolvable;
// callers check Alive themselves.
type Members struct {
	Father   *Person
	Mother   *Person
	Children []*Person
}

func (s *State) Members(familyID ecs.EntityID) (Members, error) {
	f, err := s.Family(familyID)
	if err != nil {
		return Members{}, err
	}
	var m Members
	if m.Father, err = s.Person(f.Father()); err != nil {
		return Members{}, err
	}
	if m.Mother, err = s.Person(f.Mother()); err != nil {
		return Members{}, err
	}
	for _, id := range f.children {
		c, err := s.Person(id)
		if err != nil {
			return Members{}, err
		}
		m.Children = append(m.Children, c)
	}
	return m, nil
}

// Census counts the population.
type Census struct {
	Persons  int
	Alive    int
	Dead     int
	Families int
}

func (s *State) Census() Census {
	c := Census{Persons: s.persons.Len(), Families: s.families.Len()}
	s.persons.Each(func(_ ecs.EntityID, p *Person) {
		if p.Alive() {
			c.Alive++
		}
	})
	c.Dead = c.Persons - c.Alive
	return c
}
