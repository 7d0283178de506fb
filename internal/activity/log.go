// Package activity keeps the append-only audit trail of library
// operations.
package activity

import (
	"time"

	"github.com/openshelf/openshelf/internal/entities"
)

// Log is an insertion-ordered list of timestamped messages. Entries
// are never mutated, reordered or removed.
type Log struct {
	entries []entities.ActivityEntry
}

// New creates a log seeded from a snapshot collection.
func New(entries []entities.ActivityEntry) *Log {
	l := &Log{entries: make([]entities.ActivityEntry, len(entries))}
	copy(l.entries, entries)
	return l
}

// Append adds a timestamped entry to the end of the trail.
func (l *Log) Append(message string, now time.Time) entities.ActivityEntry {
	entry := entities.ActivityEntry{Timestamp: now, Message: message}
	l.entries = append(l.entries, entry)
	return entry
}

// All returns a copy of the full ordered trail.
func (l *Log) All() []entities.ActivityEntry {
	out := make([]entities.ActivityEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}
