package world

import (
	"fmt"

	"github.com/towncore/townsim/internal/core/ecs"
)

// Family is one father, one mother and their children, held as person IDs.
// The IDs are lookups, not ownership: every Person belongs to the person
// registry alone.
type Family struct {
	id ecs.EntityID

	father   ecs.EntityID
	mother   ecs.EntityID
	children []ecs.EntityID // insertion order, display only

	age uint64 // time of existence of this family
}

// NewFamily creates a planned family with no children yet.
func NewFamily(father, mother *Person) (*Family, error) {
	return NewFamilyWithChildrenAndAge(father, mother, nil, 0)
}

func NewFamilyWithChildren(father, mother *Person, children []*Person) (*Family, error) {
	return NewFamilyWithChildrenAndAge(father, mother, children, 0)
}

// NewFamilyWithChildrenAndAge copies the members' IDs; the persons
// themselves are not modified. Every member must already be registered.
func NewFamilyWithChildrenAndAge(father, mother *Person, children []*Person, age uint64) (*Family, error) {
	fatherID, err := registeredID("father", father)
	if err != nil {
		return nil, err
	}
	motherID, err := registeredID("mother", mother)
	if err != nil {
		return nil, err
	}
	childIDs := make([]ecs.EntityID, 0, len(children))
	for i, c := range children {
		id, err := registeredID(fmt.Sprintf("child %d", i), c)
		if err != nil {
			return nil, err
		}
		childIDs = append(childIDs, id)
	}
	return &Family{
		father:   fatherID,
		mother:   motherID,
		children: childIDs,
		age:      age,
	}, nil
}

func registeredID(role string, p *Person) (ecs.EntityID, error) {
	if p == nil || p.ID().IsZero() {
		return 0, fmt.Errorf("%s: %w", role, ErrUnregisteredReference)
	}
	return p.ID(), nil
}

func (f *Family) ID() ecs.EntityID { return f.id }

// BindID is called by the registry on Register.
func (f *Family) BindID(id ecs.EntityID) { f.id = id }

func (f *Family) Father() ecs.EntityID { return f.father }
func (f *Family) Mother() ecs.EntityID { return f.mother }
func (f *Family) Age() uint64 { return f.age }

// Children returns a copy of the child IDs in insertion order.
func (f *Family) Children() []ecs.EntityID {
	out := make([]ecs.EntityID, len(f.children))
	copy(out, f.children)
	return out
}

// Parents returns father and mother.
func (f *Family) Parents() [2]ecs.EntityID {
	return [2]ecs.EntityID{f.father, f.mother}
}

// UpdateReferences stamps this family's ID into its members: children get
// OriginalFamily, father and mother get ActualFamily. Any previous value is
// overwritten. The family must be registered; every member must resolve in
// persons, otherwise nothing is written.
func (f *Family) UpdateReferences(persons *ecs.Registry[*Person]) error {
	if f.id.IsZero() {
		return fmt.Errorf("update references of unregistered family: %w", ErrInvariantViolation)
	}

	parents := make([]*Person, 0, 2)
	for _, id := range f.Parents() {
		p, err := persons.Get(id)
		if err != nil {
			return fmt.Errorf("family %s parent: %w", f.id, err)
		}
		parents = append(parents, p)
	}
	children := make([]*Person, 0, len(f.children))
	for _, id := range f.children {
		c, err := persons.Get(id)
		if err != nil {
			return fmt.Errorf("family %s child: %w", f.id, err)
		}
		children = append(children, c)
	}

	for _, c := range children {
		c.originalFamily = f.id
	}
	for _, p := range parents {
		p.actualFamily = f.id
	}
	return nil
}

// Iterate is the per-tick hook for family-level behaviour. It has no effect yet.
func (f *Family) Iterate() {}
