package testutil

import (
	"sync"
	"time"
)

// FixtureTime is the instant DeterministicClock starts at by default.
var FixtureTime = time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)

// DeterministicClock is a thread-safe wall clock for tests. Each call to Now
// returns the current instant and then advances by a fixed step, so repeated
// renders and saves see predictable, strictly increasing timestamps.
//
// A zero step freezes the clock.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewDeterministicClock creates a clock at FixtureTime that never advances.
func NewDeterministicClock() *DeterministicClock {
	return NewSteppingClock(FixtureTime, 0)
}

// NewSteppingClock creates a clock at start that advances by step per Now call.
func NewSteppingClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, now: start, step: step}
}

// Now returns the current instant and advances the clock.
//
// It has the signature of time.Now so it can be passed wherever a clock
// function is injected.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the instant the next Now call will return.
func (c *DeterministicClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
