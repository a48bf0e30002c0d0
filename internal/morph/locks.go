package morph

import "time"

// DefaultLockTTL is how long a claimed destination suppresses repeated events.
const DefaultLockTTL = 2 * time.Second

// LockTable is a time-windowed set of in-flight destination paths. It collapses a
// burst of duplicate notifications for one logical rename into a single handling.
// It is owned by the single event-loop consumer and is not safe for concurrent use.
type LockTable struct {
	ttl     time.Duration
	clock   Clock
	entries map[string]time.Time
}

// NewLockTable creates an empty lock table. A non-positive ttl selects DefaultLockTTL.
func NewLockTable(ttl time.Duration, clock Clock) *LockTable {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &LockTable{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]time.Time),
	}
}

// IsLocked reports whether key was claimed within the last TTL.
func (l *LockTable) IsLocked(key string) bool {
	ts, ok := l.entries[key]
	if !ok {
		return false
	}
	return l.clock.Now().Sub(ts) < l.ttl
}

// Claim records the current time against key.
func (l *LockTable) Claim(key string) {
	l.entries[key] = l.clock.Now()
}

// Prune drops every entry older than the TTL.
func (l *LockTable) Prune() {
	now := l.clock.Now()
	for key, ts := range l.entries {
		if now.Sub(ts) >= l.ttl {
			delete(l.entries, key)
		}
	}
}

// Len returns the number of entries currently held.
func (l *LockTable) Len() int {
	return len(l.entries)
}
