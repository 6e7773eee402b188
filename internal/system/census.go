package system

import (
	"go.uber.org/zap"

	coresys "github.com/towncore/townsim/internal/core/system"
	"github.com/towncore/townsim/internal/world"
)

// CensusSystem logs population counts every interval ticks. Phase 3 (Output).
type CensusSystem struct {
	world    *world.State
	log      *zap.Logger
	interval uint64 // 0 disables
}

func NewCensusSystem(ws *world.State, log *zap.Logger, intervalTicks uint64) *CensusSystem {
	return &CensusSystem{world: ws, log: log, interval: intervalTicks}
}

func (s *CensusSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *CensusSystem) Update(tick uint64) {
	if s.interval == 0 || tick%s.interval != 0 {
		return
	}
	c := s.world.Census()
	s.log.Info("census",
		zap.Uint64("tick", tick),
		zap.Uint64("day", coresys.TickToDay(tick)),
		zap.Int("persons", c.Persons),
		zap.Int("alive", c.Alive),
		zap.Int("dead", c.Dead),
		zap.Int("families", c.Families))
}
