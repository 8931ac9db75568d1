// internal/session/countdown_test.go
package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdown_TicksToExpiry(t *testing.T) {
	clock := NewFakeClock(t0)
	var ticks []time.Duration
	expired := 0

	c := StartCountdown(clock, 3*time.Second,
		func(remaining time.Duration) { ticks = append(ticks, remaining) },
		func() { expired++ },
	)

	clock.Advance(2 * time.Second)
	assert.Equal(t, []time.Duration{2 * time.Second, time.Second}, ticks)
	assert.Zero(t, expired)
	assert.Equal(t, time.Second, c.Remaining())

	clock.Advance(time.Second)
	assert.Equal(t, 1, expired)
	assert.Zero(t, c.Remaining())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, expired)
	assert.Len(t, ticks, 2)
}

func TestCountdown_StopPreventsExpiry(t *testing.T) {
	clock := NewFakeClock(t0)
	expired := 0

	c := StartCountdown(clock, 3*time.Second, nil, func() { expired++ })
	clock.Advance(time.Second)
	c.Stop()
	c.Stop()

	clock.Advance(time.Minute)
	assert.Zero(t, expired)
	assert.Zero(t, clock.Pending())
}
