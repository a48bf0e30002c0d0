package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// fixedInstant carries nanoseconds so version file names show the full
// 20-digit timestamp.
var fixedInstant = time.Date(2025, 3, 9, 8, 15, 42, 123456789, time.UTC)

// StubClock is a manually driven morph.Clock. Lock expiry and version
// naming both read it, so tests move time with Advance.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock returns a StubClock at a fixed instant.
func FixedClock() *StubClock {
	return &StubClock{now: fixedInstant}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Stamp is the timestamp prefix a version file created now would carry.
func (c *StubClock) Stamp() string {
	return fmt.Sprintf("%020d", c.Now().UnixNano())
}

// StubIDGenerator hands out event IDs "id-1", "id-2", ...
type StubIDGenerator struct {
	n atomic.Int64
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	return fmt.Sprintf("id-%d", g.n.Add(1))
}
