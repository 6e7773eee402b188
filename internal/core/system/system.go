package system

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: deliver last tick's events
	PhaseUpdate                  // 1: person aging and mortality
	PhasePostUpdate              // 2: family-level behaviour
	PhaseOutput                  // 3: census logging
	PhasePersist                 // 4: snapshot to storage
)

// System is the interface every simulation system implements.
// tick is the value of the Clock for the step being executed.
type System interface {
	Phase() Phase
	Update(tick uint64)
}
