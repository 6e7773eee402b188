package system

import (
	"github.com/towncore/townsim/internal/core/ecs"
	coresys "github.com/towncore/townsim/internal/core/system"
	"github.com/towncore/townsim/internal/world"
)

// FamilySystem runs the per-tick family hook after persons have aged.
// Phase 2 (PostUpdate).
type FamilySystem struct {
	world *world.State
}

func NewFamilySystem(ws *world.State) *FamilySystem {
	return &FamilySystem{world: ws}
}

func (s *FamilySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *FamilySystem) Update(_ uint64) {
	s.world.Families().Each(func(_ ecs.EntityID, f *world.Family) {
		f.Iterate()
	})
}
