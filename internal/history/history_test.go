package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/search"
)

var when = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func TestPendingEntriesAreInvisible(t *testing.T) {
	l := NewLog()

	id := l.Append(1, "lowprice", "Paris", when)
	require.NotEmpty(t, id)
	assert.Empty(t, l.List(1))

	l.AttachResults(1, id, []search.Hotel{{ID: "h1", Name: "Grand"}})

	entries := l.List(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "lowprice", entries[0].Mode)
	assert.Equal(t, "Paris", entries[0].City)
	assert.Equal(t, when, entries[0].When)
	require.Len(t, entries[0].Results, 1)
	assert.Equal(t, "h1", entries[0].Results[0].ID)
}

func TestDiscardPending(t *testing.T) {
	l := NewLog()

	done := l.Append(1, "lowprice", "Paris", when)
	l.AttachResults(1, done, nil)

	pending := l.Append(1, "bestdeal", "Rome", when)
	l.DiscardPending(1)

	entries := l.List(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "Paris", entries[0].City)

	// Attaching to the discarded entry must not resurrect it.
	l.AttachResults(1, pending, []search.Hotel{{ID: "h"}})
	assert.Len(t, l.List(1), 1)
}

func TestAppendDiscardsPreviousPending(t *testing.T) {
	l := NewLog()

	old := l.Append(1, "lowprice", "Paris", when)
	l.Append(1, "highprice", "Rome", when)

	l.AttachResults(1, old, []search.Hotel{{ID: "h"}})
	assert.Empty(t, l.List(1), "the first attempt was superseded before completing")
}

func TestChatsAreIsolated(t *testing.T) {
	l := NewLog()

	a := l.Append(1, "lowprice", "Paris", when)
	l.AttachResults(1, a, nil)
	l.Append(2, "lowprice", "Rome", when)

	assert.Len(t, l.List(1), 1)
	assert.Empty(t, l.List(2))

	l.DiscardPending(2)
	assert.Len(t, l.List(1), 1)
}

func TestChronologicalOrder(t *testing.T) {
	l := NewLog()

	for i, city := range []string{"Paris", "Rome", "Oslo"} {
		id := l.Append(1, "lowprice", city, when.Add(time.Duration(i)*time.Hour))
		l.AttachResults(1, id, nil)
	}

	entries := l.List(1)
	require.Len(t, entries, 3)
	assert.Equal(t, "Paris", entries[0].City)
	assert.Equal(t, "Rome", entries[1].City)
	assert.Equal(t, "Oslo", entries[2].City)
}
