package system

import (
	"github.com/towncore/townsim/internal/core/event"
	coresys "github.com/towncore/townsim/internal/core/system"
)

// EventDispatchSystem makes last tick's events visible and delivers them.
// Phase 0 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ uint64) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
