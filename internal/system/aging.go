package system

import (
	"go.uber.org/zap"

	"github.com/towncore/townsim/internal/core/ecs"
	"github.com/towncore/townsim/internal/core/event"
	coresys "github.com/towncore/townsim/internal/core/system"
	"github.com/towncore/townsim/internal/world"
)

// AgingSystem advances every live person by one tick: age is recomputed
// from the tick and the mortality model is consulted. Dead persons stay in
// the registry and are skipped. Phase 1 (Update).
type AgingSystem struct {
	world *world.State
	model world.MortalityModel
	log   *zap.Logger
}

func NewAgingSystem(ws *world.State, model world.MortalityModel, log *zap.Logger) *AgingSystem {
	if model == nil {
		model = world.LinearLifespan{}
	}
	return &AgingSystem{world: ws, model: model, log: log}
}

func (s *AgingSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *AgingSystem) Update(tick uint64) {
	s.world.Persons().Each(func(id ecs.EntityID, p *world.Person) {
		if !p.Alive() {
			return
		}
		if p.IterateWith(tick, s.model) {
			s.log.Debug("person died",
				zap.Uint64("person", uint64(id)),
				zap.String("name", p.Name()),
				zap.Uint64("age_days", p.Age()),
				zap.Uint64("tick", tick))
			event.Emit(s.world.Bus(), event.PersonDied{PersonID: id, AgeDays: p.Age(), Tick: tick})
		}
	})
}
