package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetCreatesOnce(t *testing.T) {
	s := NewStore()

	st := s.Get(42)
	require.NotNil(t, st)
	assert.Same(t, st, s.Get(42))
	assert.Equal(t, 1, s.Len())

	s.Get(43)
	assert.Equal(t, 2, s.Len())

	s.Delete(42)
	assert.Equal(t, 1, s.Len())
}

func TestStoreConcurrentGet(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	states := make([]*State, 32)
	for i := range states {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = s.Get(7)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
	for _, st := range states {
		assert.Same(t, states[0], st)
	}
}

func TestPendingStep(t *testing.T) {
	st := &State{}
	assert.False(t, st.HasStep())
	assert.Nil(t, st.TakeStep())

	called := ""
	st.RegisterStep(func(ctx context.Context, text string) error {
		called = text
		return nil
	})
	require.True(t, st.HasStep())

	step := st.TakeStep()
	require.NotNil(t, step)
	assert.False(t, st.HasStep(), "taking a step removes it")

	require.NoError(t, step(context.Background(), "hello"))
	assert.Equal(t, "hello", called)
}

func TestRegisterStepReplaces(t *testing.T) {
	st := &State{}

	st.RegisterStep(func(ctx context.Context, text string) error { return nil })
	hit := false
	st.RegisterStep(func(ctx context.Context, text string) error {
		hit = true
		return nil
	})

	step := st.TakeStep()
	require.NoError(t, step(context.Background(), "x"))
	assert.True(t, hit)
	assert.Nil(t, st.TakeStep())
}

func TestResetBooking(t *testing.T) {
	st := &State{Booking: NewBooking()}
	require.NoError(t, st.Booking.AddRoom())
	require.NoError(t, st.Booking.SetAdults(0, 4))

	st.ResetBooking()
	assert.Equal(t, NewBooking(), st.Booking)
}
