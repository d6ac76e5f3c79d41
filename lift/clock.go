package lift

import (
	"context"
	"time"
)

// Clock calls Step on a fixed interval. It is the only place the simulation
// meets wall time; System itself only counts ticks.
type Clock struct {
	sys      *System
	interval time.Duration
	onTick   func([]Arrival) // may be nil
}

func NewClock(sys *System, interval time.Duration, onTick func([]Arrival)) *Clock {
	return &Clock{sys: sys, interval: interval, onTick: onTick}
}

// Run steps the system until ctx is done, then returns ctx.Err().
func (c *Clock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.sys.log.Info().Uint64("tick", c.sys.Tick()).Msg("clock stopped")
			return ctx.Err()
		case <-ticker.C:
			arrivals := c.sys.Step()
			if c.onTick != nil {
				c.onTick(arrivals)
			}
		}
	}
}
