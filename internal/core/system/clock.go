package system

import (
	"context"
	"time"
)

const (
	// TicksPerDay: one tick is one in-world minute.
	TicksPerDay uint64 = 1440
	DaysPerYear uint64 = 365
)

// TickToDay converts a tick number to a whole day number (floor).
func TickToDay(tick uint64) uint64 {
	return tick / TicksPerDay
}

// DayToTick converts a day number to the first tick of that day.
func DayToTick(day uint64) uint64 {
	return day * TicksPerDay
}

// Clock is the tick driver. It owns the tick counter and hands the current
// value to the runner; nothing else reads simulation time from shared state.
// Single goroutine only.
type Clock struct {
	runner *Runner
	tick   uint64
}

func NewClock(runner *Runner, start uint64) *Clock {
	return &Clock{runner: runner, tick: start}
}

// Tick returns the tick the next Step will execute.
func (c *Clock) Tick() uint64 { return c.tick }

// Step executes one full tick, then advances the counter. All mutations of
// the tick are applied before Step returns.
func (c *Clock) Step() {
	c.runner.Tick(c.tick)
	c.tick++
}

// Advance executes n ticks back to back.
func (c *Clock) Advance(n uint64) {
	for i := uint64(0); i < n; i++ {
		c.Step()
	}
}

// Run steps the clock until ctx is done or maxTicks steps have run
// (maxTicks == 0 means unbounded). With rate > 0 each step waits for the
// next wall-clock tick; with rate == 0 steps run back to back. Cancellation
// is only observed between steps.
func (c *Clock) Run(ctx context.Context, rate time.Duration, maxTicks uint64) error {
	var wait <-chan time.Time
	if rate > 0 {
		t := time.NewTicker(rate)
		defer t.Stop()
		wait = t.C
	}

	for n := uint64(0); maxTicks == 0 || n < maxTicks; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if wait != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-wait:
			}
		}
		c.Step()
	}
	return nil
}
