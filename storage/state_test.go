package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptUnlock(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Happy path - unlock from not started", func(t *testing.T) {
		attempt := &Attempt{Puzzle: "p1", Team: "alpha", State: StateNotStarted}

		require.NoError(t, attempt.Unlock(start))
		assert.Equal(t, StateInProgress, attempt.State)
		require.NotNil(t, attempt.Timer.Start)
		assert.True(t, attempt.Timer.Start.Equal(start))
		assert.Nil(t, attempt.Timer.End)
	})

	t.Run("Unhappy path - unlock an in progress attempt", func(t *testing.T) {
		attempt := &Attempt{Puzzle: "p1", Team: "alpha", State: StateInProgress}

		err := attempt.Unlock(start)
		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, StateInProgress, stateErr.Current)
		assert.Equal(t, StateNotStarted, stateErr.Expected)
		assert.Equal(t, StateInProgress, attempt.State)
		assert.Nil(t, attempt.Timer.Start)
	})

	t.Run("Unhappy path - unlock a submitted attempt", func(t *testing.T) {
		attempt := &Attempt{Puzzle: "p1", Team: "alpha", State: StateSubmitted}

		err := attempt.Unlock(start)
		require.Error(t, err)
		assert.Equal(t, StateSubmitted, attempt.State)
	})
}

func TestAttemptSubmit(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	t.Run("Happy path - submit an in progress attempt", func(t *testing.T) {
		attempt := &Attempt{Puzzle: "p1", Team: "alpha", State: StateNotStarted}
		require.NoError(t, attempt.Unlock(start))

		require.NoError(t, attempt.Submit("https://example.com/solution", end))
		assert.Equal(t, StateSubmitted, attempt.State)
		assert.Equal(t, "https://example.com/solution", attempt.Link)
		require.NotNil(t, attempt.Timer.End)
		assert.True(t, attempt.Timer.End.Equal(end))
		assert.Equal(t, end.Sub(start).String(), attempt.Timer.Duration)
		assert.Equal(t, "1h30m0s", attempt.Timer.Duration)
	})

	t.Run("Unhappy path - submit a not started attempt", func(t *testing.T) {
		attempt := &Attempt{Puzzle: "p1", Team: "alpha", State: StateNotStarted}

		err := attempt.Submit("link", end)
		var stateErr *StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, StateNotStarted, stateErr.Current)
		assert.Equal(t, StateInProgress, stateErr.Expected)
		assert.Equal(t, StateNotStarted, attempt.State)
		assert.Empty(t, attempt.Link)
		assert.Nil(t, attempt.Timer.End)
		assert.Empty(t, attempt.Timer.Duration)
	})

	t.Run("Unhappy path - submit twice", func(t *testing.T) {
		attempt := &Attempt{Puzzle: "p1", Team: "alpha", State: StateNotStarted}
		require.NoError(t, attempt.Unlock(start))
		require.NoError(t, attempt.Submit("first", end))

		err := attempt.Submit("second", end.Add(time.Hour))
		require.Error(t, err)
		assert.Equal(t, "first", attempt.Link)
		assert.Equal(t, "1h30m0s", attempt.Timer.Duration)
	})
}

func TestStateErrorMessage(t *testing.T) {
	err := &StateError{Current: StateSubmitted, Expected: StateNotStarted}
	assert.Equal(t, "attempt is submitted; expected it to be not started", err.Error())
	assert.False(t, errors.Is(err, ErrNotInitialized))
}
