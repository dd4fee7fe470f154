// Package testutil provides deterministic helpers for driving the
// sequencer in tests: a resettable cycle clock and a seeded stimulus
// generator for randomized property runs.
package testutil

import "sync"

// Clock is a thread-safe monotonic cycle counter for tests.
//
// It can be reset for test reuse, so the same scenario can run multiple
// times with identical cycle numbering.
type Clock struct {
	mu    sync.Mutex
	cycle int64
}

// NewClock creates a clock starting at 0. The first call to Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments and returns the next cycle number.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycle++
	return c.cycle
}

// Current returns the current cycle number without incrementing.
func (c *Clock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycle
}

// Reset rewinds the clock to 0.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cycle = 0
}
