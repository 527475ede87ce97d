package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall-clock time deterministic tests start from.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// WallClock is a deterministic replacement for time.Now.
//
// Each call to Now returns the current time and then advances it by Step,
// so consecutive runs get distinct, predictable timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type WallClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewWallClock creates a clock at start that advances by step per call.
// A zero step freezes the clock.
func NewWallClock(start time.Time, step time.Duration) *WallClock {
	return &WallClock{now: start.UTC(), step: step}
}

// Now returns the current time and advances the clock.
func (c *WallClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Peek returns the time the next call to Now will return.
func (c *WallClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset moves the clock back to t.
//
// Used for test reuse. After Reset(t), the next call to Now() returns t.
func (c *WallClock) Reset(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
