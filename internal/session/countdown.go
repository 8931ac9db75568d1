// internal/session/countdown.go
package session

import (
	"sync"
	"time"
)

const tickInterval = time.Second

// Countdown ticks a visible counter down once per second and calls onExpire
// if it reaches zero before Stop. It enforces the deadline on its own,
// independently of the monitor that started it.
type Countdown struct {
	mu        sync.Mutex
	clock     Clock
	remaining time.Duration
	timer     Timer
	stopped   bool

	onTick   func(remaining time.Duration)
	onExpire func()
}

// StartCountdown begins ticking from lead. onTick may be nil.
func StartCountdown(clock Clock, lead time.Duration, onTick func(remaining time.Duration), onExpire func()) *Countdown {
	c := &Countdown{
		clock:     clock,
		remaining: lead,
		onTick:    onTick,
		onExpire:  onExpire,
	}

	c.mu.Lock()
	c.timer = clock.AfterFunc(tickInterval, c.tick)
	c.mu.Unlock()

	return c
}

func (c *Countdown) tick() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	if c.remaining <= tickInterval {
		c.remaining = 0
		c.stopped = true
		c.mu.Unlock()
		if c.onExpire != nil {
			c.onExpire()
		}
		return
	}

	c.remaining -= tickInterval
	remaining := c.remaining
	c.timer = c.clock.AfterFunc(tickInterval, c.tick)
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(remaining)
	}
}

func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop halts the countdown without calling onExpire. It is safe to call more
// than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
	}
}
