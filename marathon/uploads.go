package marathon

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rsarvar1a/riddler/storage"
)

// puzzleDoc and teamDoc mirror the upload schemas with pointer fields, so a
// key that is absent altogether is distinguishable from a zero value.
type puzzleDoc struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Points   *int   `yaml:"points"`
	URL      string `yaml:"url"`
}

type teamDoc struct {
	Members  *[]string         `yaml:"members"`
	Channels *[]string         `yaml:"channels"`
	Role     map[string]string `yaml:"role"`
}

// ParsePuzzles decodes an uploaded puzzles file. The top-level keys become
// puzzle ids; every puzzle must carry name, category, points and url.
func ParsePuzzles(raw []byte) (map[string]*storage.Puzzle, error) {
	var docs map[string]*puzzleDoc
	if err := decodeStrict(raw, &docs); err != nil {
		return nil, err
	}

	puzzles := make(map[string]*storage.Puzzle, len(docs))
	for id, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("puzzle %q has no definition", id)
		}
		if doc.Name == "" || doc.Category == "" || doc.URL == "" {
			return nil, fmt.Errorf("puzzle %q is missing one of name, category or url", id)
		}
		if doc.Points == nil {
			return nil, fmt.Errorf("puzzle %q is missing points", id)
		}
		puzzles[id] = &storage.Puzzle{
			ID:       id,
			Name:     doc.Name,
			Category: doc.Category,
			Points:   *doc.Points,
			URL:      doc.URL,
		}
	}
	return puzzles, nil
}

// ParseTeams decodes an uploaded teams file. The top-level keys become team
// names; members and channels are required, the role mapping defaults to
// empty.
func ParseTeams(raw []byte) (map[string]*storage.Team, error) {
	var docs map[string]*teamDoc
	if err := decodeStrict(raw, &docs); err != nil {
		return nil, err
	}

	teams := make(map[string]*storage.Team, len(docs))
	for name, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("team %q has no definition", name)
		}
		if doc.Members == nil {
			return nil, fmt.Errorf("team %q is missing members", name)
		}
		if doc.Channels == nil {
			return nil, fmt.Errorf("team %q is missing channels", name)
		}
		role := doc.Role
		if role == nil {
			role = map[string]string{}
		}
		teams[name] = &storage.Team{
			Name:     name,
			Members:  *doc.Members,
			Channels: *doc.Channels,
			Role:     role,
		}
	}
	return teams, nil
}

func decodeStrict(raw []byte, out interface{}) error {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}
