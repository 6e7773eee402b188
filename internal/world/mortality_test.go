package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deathDay returns the first eligible day at which model kills a person of health h.
func deathDay(t *testing.T, model MortalityModel, h uint8) uint64 {
	t.Helper()
	for day := MortalityEligibleDay; day <= 200*365; day++ {
		if model.Expired(day, h) {
			return day
		}
	}
	t.Fatalf("health %d never expires", h)
	return 0
}

func TestLinearLifespanBoundaries(t *testing.T) {
	m := LinearLifespan{}

	assert.Equal(t, uint64(50*365), deathDay(t, m, 0))
	assert.Equal(t, uint64(110*365), deathDay(t, m, 255))

	assert.InDelta(t, 50*365, m.DeathThresholdDays(0), 1e-9)
	assert.InDelta(t, 110*365, m.DeathThresholdDays(255), 1e-9)
}

func TestLinearLifespanMonotonicInHealth(t *testing.T) {
	m := LinearLifespan{}
	prev := deathDay(t, m, 0)
	for h := 1; h <= 255; h++ {
		d := deathDay(t, m, uint8(h))
		require.GreaterOrEqual(t, d, prev, "health %d dies earlier than health %d", h, h-1)
		prev = d
	}
}

func TestLinearLifespanMatchesThreshold(t *testing.T) {
	m := LinearLifespan{}
	for _, h := range []uint8{1, 17, 100, 128, 254} {
		threshold := m.DeathThresholdDays(h)
		d := deathDay(t, m, h)
		assert.GreaterOrEqual(t, float64(d), threshold-1e-6, "health %d", h)
		assert.Less(t, float64(d-1), threshold, "health %d", h)
	}
}
