package storage

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rsarvar1a/riddler/logging"
)

// AttemptStorage persists the dense attempt matrix. Store always writes the
// matrix and optionally a simultaneous roster update; initialize is the only
// caller that passes a roster.
type AttemptStorage interface {
	Load(ctx context.Context) (AttemptMatrix, error)
	Store(ctx context.Context, attempts AttemptMatrix, roster *Roster) error
}

// YAMLAttemptStorage keeps attempts.yaml under Dir and delegates roster writes
// to the shared roster storage.
type YAMLAttemptStorage struct {
	Dir    string
	Roster *YAMLRosterStorage
	mu     sync.Mutex
}

func (s *YAMLAttemptStorage) Load(ctx context.Context) (AttemptMatrix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attempts AttemptMatrix
	if err := readYAML(filepath.Join(s.Dir, attemptsFile), &attempts); err != nil {
		logging.Log.Errorf("ATTEMPT: failed to load attempts: %v", err)
		return nil, err
	}
	for pid, row := range attempts {
		for name, attempt := range row {
			attempt.Puzzle = pid
			attempt.Team = name
		}
	}
	return attempts, nil
}

func (s *YAMLAttemptStorage) Store(ctx context.Context, attempts AttemptMatrix, roster *Roster) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeYAML(filepath.Join(s.Dir, attemptsFile), attempts); err != nil {
		logging.Log.Errorf("ATTEMPT: failed to store attempts: %v", err)
		return err
	}
	if roster != nil {
		return s.Roster.Store(ctx, roster.Puzzles, roster.Teams)
	}
	return nil
}
