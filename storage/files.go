package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	puzzlesFile  = "puzzles.yaml"
	teamsFile    = "teams.yaml"
	attemptsFile = "attempts.yaml"
)

func readYAML(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotInitialized, filepath.Base(path))
		}
		return err
	}
	return yaml.Unmarshal(raw, out)
}

// writeYAML overwrites the previous file contents wholesale; the last writer
// wins.
func writeYAML(path string, value interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
