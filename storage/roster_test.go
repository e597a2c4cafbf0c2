package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsarvar1a/riddler/logging"
)

func setupRosterStorage(t *testing.T) *YAMLRosterStorage {
	t.Helper()
	logging.Log = logrus.New()
	return &YAMLRosterStorage{Dir: t.TempDir()}
}

func testPuzzles() map[string]*Puzzle {
	return map[string]*Puzzle{
		"p1": {ID: "p1", Name: "Cryptic One", Category: "crypto", Points: 100, URL: "https://example.com/p1"},
		"p2": {ID: "p2", Name: "Lateral Two", Category: "lateral", Points: 250, URL: "https://example.com/p2"},
	}
}

func testTeams() map[string]*Team {
	return map[string]*Team{
		"alpha": {
			Name:     "alpha",
			Members:  []string{"u1"},
			Channels: []string{"c1"},
			Role:     map[string]string{"g1": "r1"},
		},
		"bravo": {
			Name:     "bravo",
			Members:  []string{"u2", "u3"},
			Channels: []string{"c2"},
			Role:     map[string]string{},
		},
	}
}

func TestRosterRoundTrip(t *testing.T) {
	s := setupRosterStorage(t)

	require.NoError(t, s.Store(context.Background(), testPuzzles(), testTeams()))

	puzzles, teams, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testPuzzles(), puzzles)
	assert.Equal(t, testTeams(), teams)
}

func TestRosterPartialStore(t *testing.T) {
	s := setupRosterStorage(t)
	require.NoError(t, s.Store(context.Background(), testPuzzles(), testTeams()))

	t.Run("nil puzzles leaves puzzles file untouched", func(t *testing.T) {
		teams := testTeams()
		teams["alpha"].Members = append(teams["alpha"].Members, "u9")
		require.NoError(t, s.Store(context.Background(), nil, teams))

		puzzles, loaded, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, testPuzzles(), puzzles)
		assert.Equal(t, []string{"u1", "u9"}, loaded["alpha"].Members)
	})

	t.Run("nil teams leaves teams file untouched", func(t *testing.T) {
		before, _, err := s.Load(context.Background())
		require.NoError(t, err)
		require.NoError(t, s.Store(context.Background(), before, nil))

		_, teams, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"u1", "u9"}, teams["alpha"].Members)
	})
}

func TestRosterLoadKeysAreAuthoritative(t *testing.T) {
	s := setupRosterStorage(t)

	// A hand-edited file whose inner id disagrees with its key.
	raw := []byte("p1:\n  id: mismatched\n  name: Cryptic One\n  category: crypto\n  points: 100\n  url: https://example.com/p1\n")
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, puzzlesFile), raw, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, teamsFile), []byte("alpha:\n  members: [u1]\n  channels: []\n"), 0o644))

	puzzles, teams, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", puzzles["p1"].ID)
	assert.Equal(t, "alpha", teams["alpha"].Name)
	assert.NotNil(t, teams["alpha"].Role)
}

func TestRosterLoadMissingFiles(t *testing.T) {
	s := setupRosterStorage(t)

	_, _, err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInitialized))
}
