// Package history keeps a per-chat record of completed searches so they
// can be listed and replayed later.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stayscout/stayscout/internal/search"
)

// Entry is one search a chat has run.
type Entry struct {
	ID      string
	Mode    string
	City    string
	When    time.Time
	Results []search.Hotel

	completed bool
}

// Log stores search history per chat. A search is appended as pending when
// it starts and becomes visible in listings only once results are attached.
// Abandoned searches are discarded.
type Log struct {
	mu      sync.RWMutex
	entries map[int64][]*Entry
}

// NewLog creates an empty history log.
func NewLog() *Log {
	return &Log{entries: make(map[int64][]*Entry)}
}

// Append records the start of a search and returns the new entry's ID.
// Any previous pending entry for the chat is discarded first.
func (l *Log) Append(chatID int64, mode, city string, when time.Time) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.discardPendingLocked(chatID)

	e := &Entry{
		ID:   uuid.New().String(),
		Mode: mode,
		City: city,
		When: when,
	}
	l.entries[chatID] = append(l.entries[chatID], e)
	return e.ID
}

// AttachResults completes the entry with the given ID. Attaching to an
// unknown or already completed entry is a no-op.
func (l *Log) AttachResults(chatID int64, entryID string, results []search.Hotel) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries[chatID] {
		if e.ID == entryID && !e.completed {
			e.Results = results
			e.completed = true
			return
		}
	}
}

// DiscardPending drops the chat's pending entry, if any.
func (l *Log) DiscardPending(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.discardPendingLocked(chatID)
}

func (l *Log) discardPendingLocked(chatID int64) {
	entries := l.entries[chatID]
	kept := entries[:0]
	for _, e := range entries {
		if e.completed {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(l.entries, chatID)
		return
	}
	l.entries[chatID] = kept
}

// List returns the chat's completed searches in chronological order.
func (l *Log) List(chatID int64) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries[chatID] {
		if e.completed {
			out = append(out, *e)
		}
	}
	return out
}
