package event

import "github.com/towncore/townsim/internal/core/ecs"

// Lifecycle events. Emitted during tick N, delivered at the start of tick N+1.

type PersonRegistered struct {
	PersonID ecs.EntityID
	Tick     uint64
}

type PersonDied struct {
	PersonID ecs.EntityID
	AgeDays  uint64
	Tick     uint64
}

type FamilyFormed struct {
	FamilyID ecs.EntityID
	Father   ecs.EntityID
	Mother   ecs.EntityID
	Children []ecs.EntityID
}
