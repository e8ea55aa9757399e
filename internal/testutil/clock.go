// Package testutil holds shared test helpers.
package testutil

import "sync"

// WallClock is a controllable millisecond clock for tests.
//
// Unlike time.Now, WallClock only moves when told to, so tests can pin two
// transactions to the same millisecond or jump across a UTC day boundary.
//
// Thread-safety: all methods are safe for concurrent use.
type WallClock struct {
	mu  sync.Mutex
	now int64
}

// NewWallClock creates a clock frozen at start milliseconds.
func NewWallClock(start int64) *WallClock {
	return &WallClock{now: start}
}

// Now returns the current instant without advancing. Pass the method value
// as the engine's clock.
func (c *WallClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by millis and returns the new instant.
func (c *WallClock) Advance(millis int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += millis
	return c.now
}

// Set jumps the clock to an absolute instant.
func (c *WallClock) Set(millis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = millis
}
