package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/towncore/townsim/internal/core/ecs"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []ecs.EntityID
	Subscribe(b, func(ev PersonDied) { got = append(got, ev.PersonID) })

	Emit(b, PersonDied{PersonID: 1})
	Emit(b, PersonDied{PersonID: 2})
	assert.Equal(t, 2, b.Pending())

	b.DispatchAll()
	assert.Empty(t, got, "events must not be visible before the swap")

	b.SwapBuffers()
	assert.Equal(t, 0, b.Pending())
	b.DispatchAll()
	assert.Equal(t, []ecs.EntityID{1, 2}, got)

	// The front buffer is recycled on the following swap.
	got = nil
	b.SwapBuffers()
	b.DispatchAll()
	assert.Empty(t, got)
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	var deaths, families int
	Subscribe(b, func(PersonDied) { deaths++ })
	Subscribe(b, func(FamilyFormed) { families++ })

	Emit(b, FamilyFormed{FamilyID: 1})
	Emit(b, PersonDied{PersonID: 3})
	Emit(b, PersonRegistered{PersonID: 4}) // no subscriber
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, deaths)
	assert.Equal(t, 1, families)
}
