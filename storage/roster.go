package storage

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rsarvar1a/riddler/logging"
)

// RosterStorage persists the puzzle and team collections.
//
// Store leaves a collection's file untouched when the corresponding map is
// nil. There is no file-level locking between processes; two overlapping
// commands race on a plain last-write-wins overwrite.
type RosterStorage interface {
	Load(ctx context.Context) (map[string]*Puzzle, map[string]*Team, error)
	Store(ctx context.Context, puzzles map[string]*Puzzle, teams map[string]*Team) error
}

// YAMLRosterStorage keeps puzzles.yaml and teams.yaml under Dir. The mutex
// serializes file access within this process only; it does not make a
// handler's load-mutate-store sequence atomic.
type YAMLRosterStorage struct {
	Dir string
	mu  sync.Mutex
}

func (s *YAMLRosterStorage) Load(ctx context.Context) (map[string]*Puzzle, map[string]*Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *YAMLRosterStorage) load() (map[string]*Puzzle, map[string]*Team, error) {
	var puzzles map[string]*Puzzle
	if err := readYAML(filepath.Join(s.Dir, puzzlesFile), &puzzles); err != nil {
		logging.Log.Errorf("ROSTER: failed to load puzzles: %v", err)
		return nil, nil, err
	}
	var teams map[string]*Team
	if err := readYAML(filepath.Join(s.Dir, teamsFile), &teams); err != nil {
		logging.Log.Errorf("ROSTER: failed to load teams: %v", err)
		return nil, nil, err
	}

	// The top-level keys are authoritative for entity identity.
	for id, p := range puzzles {
		p.ID = id
	}
	for name, t := range teams {
		t.Name = name
		if t.Role == nil {
			t.Role = map[string]string{}
		}
	}
	return puzzles, teams, nil
}

func (s *YAMLRosterStorage) Store(ctx context.Context, puzzles map[string]*Puzzle, teams map[string]*Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(puzzles, teams)
}

func (s *YAMLRosterStorage) store(puzzles map[string]*Puzzle, teams map[string]*Team) error {
	if puzzles != nil {
		if err := writeYAML(filepath.Join(s.Dir, puzzlesFile), puzzles); err != nil {
			logging.Log.Errorf("ROSTER: failed to store puzzles: %v", err)
			return err
		}
	}
	if teams != nil {
		if err := writeYAML(filepath.Join(s.Dir, teamsFile), teams); err != nil {
			logging.Log.Errorf("ROSTER: failed to store teams: %v", err)
			return err
		}
	}
	return nil
}
