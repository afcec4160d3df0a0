// Package logbuf provides the bounded in-memory buffer of host diagnostics.
package logbuf

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the buffer when no capacity is configured.
const DefaultCapacity = 1000

// Entry is a single diagnostic event. Entries are immutable once appended.
type Entry struct {
	Message    string
	StackTrace string
	Severity   Severity
	Time       time.Time
}

// Buffer retains the most recent entries with FIFO eviction. A single
// exclusive lock covers append, snapshot, and clear so a snapshot always
// reflects a buffer state that existed at one instant.
type Buffer struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	evicted  uint64
}

// New creates a buffer that retains at most capacity entries.
// Non-positive capacities fall back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an entry, evicting the oldest when at capacity.
func (b *Buffer) Append(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.capacity {
		overflow := len(b.entries) - b.capacity + 1
		b.entries = append(b.entries[:0], b.entries[overflow:]...)
		b.evicted += uint64(overflow)
	}
	b.entries = append(b.entries, entry)
}

// Snapshot returns up to limit of the most recent entries in chronological
// order. When filter is non-nil it is applied to the whole buffer before the
// limit, so the result is the newest `limit` entries of that severity.
func (b *Buffer) Snapshot(filter *Severity, limit int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	matched := b.entries
	if filter != nil {
		matched = make([]Entry, 0, len(b.entries))
		for _, entry := range b.entries {
			if entry.Severity == *filter {
				matched = append(matched, entry)
			}
		}
	}

	if limit < 0 {
		limit = 0
	}
	if limit > len(matched) {
		limit = len(matched)
	}
	out := make([]Entry, limit)
	copy(out, matched[len(matched)-limit:])
	return out
}

// Clear removes all entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
}

// Len reports the current number of retained entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Evicted reports the total number of entries dropped by FIFO eviction.
func (b *Buffer) Evicted() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evicted
}
