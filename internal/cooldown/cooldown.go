// Package cooldown implements a sliding-window-per-key rate limiter for call
// identifiers. The table is owned by the single watcher task; check and
// record are one step, so no locking is needed.
package cooldown

import "time"

// Table maps call identifiers to the timestamp of the most recent triggered
// action. Entries are never evicted; growth is bounded by the variety of
// identifiers seen over the process lifetime.
type Table struct {
	window time.Duration
	last   map[string]time.Time
}

func NewTable(window time.Duration) *Table {
	return &Table{
		window: window,
		last:   make(map[string]time.Time),
	}
}

// ShouldTrigger reports whether an action may fire for the identifier at
// now. A true result records now as the identifier's last-action timestamp;
// a false result leaves the table unchanged. Unrelated identifiers never
// interfere with each other's cooldowns.
func (t *Table) ShouldTrigger(id string, now time.Time) bool {
	if last, ok := t.last[id]; ok && now.Sub(last) < t.window {
		return false
	}
	t.last[id] = now
	return true
}

// Len reports the number of identifiers tracked.
func (t *Table) Len() int {
	return len(t.last)
}
