package world

import coresys "github.com/towncore/townsim/internal/core/system"

const (
	// MinLifespanYears is both the age at which mortality starts being
	// evaluated and the lifespan of a person with health 0.
	MinLifespanYears uint64 = 50
	// MaxLifespanYears is the lifespan of a person with health 255.
	MaxLifespanYears uint64 = 110

	maxHealth uint64 = 255
)

// MortalityEligibleDay is the first age, in days, at which a person can die.
const MortalityEligibleDay = MinLifespanYears * coresys.DaysPerYear

// MortalityModel decides whether a person of the given age and health has
// reached the end of their life. Implementations must be deterministic.
type MortalityModel interface {
	Expired(ageDays uint64, health uint8) bool
}

// LinearLifespan interpolates the lifespan between MinLifespanYears (health 0)
// and MaxLifespanYears (health 255):
//
//	threshold = (50 + health/255 * (110-50)) * 365 days
//
// The comparison age >= threshold is done on integers scaled by 255, so the
// boundaries are exact.
type LinearLifespan struct{}

func (LinearLifespan) Expired(ageDays uint64, health uint8) bool {
	span := MaxLifespanYears - MinLifespanYears
	scaledThreshold := (MinLifespanYears*maxHealth + uint64(health)*span) * coresys.DaysPerYear
	return ageDays*maxHealth >= scaledThreshold
}

// DeathThresholdDays returns the real-valued threshold for health, for
// reporting and for scripted models that want to reuse the default curve.
func (LinearLifespan) DeathThresholdDays(health uint8) float64 {
	span := float64(MaxLifespanYears - MinLifespanYears)
	years := float64(MinLifespanYears) + float64(health)/float64(maxHealth)*span
	return years * float64(coresys.DaysPerYear)
}
