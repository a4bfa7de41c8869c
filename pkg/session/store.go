// Package session owns all per-chat mutable state for the assistant:
// booking criteria, the in-flight search settings, best-deal filters and
// the pending free-text continuation. It holds no business logic; the
// conversation engine mutates state through the invariant-checking
// methods on the types themselves.
package session

import (
	"context"
	"sync"
)

// Mode is a search mode selected by command.
type Mode string

const (
	ModeLowPrice  Mode = "lowprice"
	ModeHighPrice Mode = "highprice"
	ModeBestDeal  Mode = "bestdeal"
)

// CityChoice is one destination candidate offered to the guest.
type CityChoice struct {
	ID   string
	Name string
}

// SearchSettings is the transient state of one search attempt. It is
// created when a search command starts and discarded when the search
// completes or is abandoned.
type SearchSettings struct {
	Mode          Mode
	DestinationID string
	City          string
	Choices       []CityChoice
	HotelCount    int
	PhotoCount    int

	// HistoryID is the pending history entry for this attempt, empty
	// until a destination is chosen.
	HistoryID string
}

// Continuation consumes the next free-text message for a chat.
type Continuation func(ctx context.Context, text string) error

// State is the per-chat session. All access must happen while holding
// the state's lock; the engine's dispatch middleware acquires it for the
// duration of each event so a stray double-submit cannot tear state.
type State struct {
	mu sync.Mutex

	// Booking is the chat's stay criteria. Never destroyed except by
	// explicit reset.
	Booking Booking

	// Search is the in-flight search attempt, nil outside a search.
	Search *SearchSettings

	// Filters are the chat's best-deal settings.
	Filters Filters

	// LastMenuID is the message id of the most recently rendered menu,
	// zero when no menu is on screen.
	LastMenuID int

	pending Continuation
}

// Lock serializes event processing for this chat.
func (st *State) Lock() { st.mu.Lock() }

// Unlock releases the chat for the next event.
func (st *State) Unlock() { st.mu.Unlock() }

// RegisterStep installs the continuation that will receive the chat's
// next free-text message, replacing any previously registered one.
func (st *State) RegisterStep(c Continuation) {
	st.pending = c
}

// TakeStep removes and returns the pending continuation, or nil.
func (st *State) TakeStep() Continuation {
	c := st.pending
	st.pending = nil
	return c
}

// ClearStep discards the pending continuation, if any.
func (st *State) ClearStep() {
	st.pending = nil
}

// HasStep reports whether a continuation is registered.
func (st *State) HasStep() bool {
	return st.pending != nil
}

// ResetBooking reinitializes the stay criteria to the default single room.
func (st *State) ResetBooking() {
	st.Booking = NewBooking()
}

// Store keeps one State per chat identifier. The map itself is guarded;
// each chat's State carries its own lock so distinct chats proceed
// independently.
type Store struct {
	mu    sync.RWMutex
	chats map[int64]*State
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{chats: make(map[int64]*State)}
}

// Get returns the state for a chat, creating it on first use.
func (s *Store) Get(chatID int64) *State {
	s.mu.RLock()
	st, ok := s.chats[chatID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.chats[chatID]; ok {
		return st
	}
	st = &State{Booking: NewBooking()}
	s.chats[chatID] = st
	return st
}

// Len reports the number of chats with state.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// Delete removes a chat's state entirely.
func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
}
