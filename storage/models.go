package storage

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Puzzle is the public definition of a single marathon puzzle. Puzzles are
// created by initialize and never mutated afterwards.
type Puzzle struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Points   int    `yaml:"points"`
	URL      string `yaml:"url"`
}

// Team maps a team to its members, its registered channels, and the role that
// represents it in each guild.
type Team struct {
	Name     string            `yaml:"name"`
	Members  []string          `yaml:"members"`
	Channels []string          `yaml:"channels"`
	Role     map[string]string `yaml:"role"`
}

// Includes reports whether the user is directly listed on the team.
func (t *Team) Includes(userID string) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// HasChannel reports whether the channel is registered to the team.
func (t *Team) HasChannel(channelID string) bool {
	for _, ch := range t.Channels {
		if ch == channelID {
			return true
		}
	}
	return false
}

// AddChannel registers a channel; inserting an already registered channel is a
// no-op.
func (t *Team) AddChannel(channelID string) {
	if !t.HasChannel(channelID) {
		t.Channels = append(t.Channels, channelID)
	}
}

// RemoveChannel unregisters a channel; removing an absent channel is a no-op.
func (t *Team) RemoveChannel(channelID string) {
	for i, ch := range t.Channels {
		if ch == channelID {
			t.Channels = append(t.Channels[:i], t.Channels[i+1:]...)
			return
		}
	}
}

// RemoveMember drops the user from the member list if present.
func (t *Team) RemoveMember(userID string) {
	for i, m := range t.Members {
		if m == userID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return
		}
	}
}

// Mention renders the team as its role mention when it has a role in the given
// guild, and as its bare name otherwise.
func (t *Team) Mention(guildID string) string {
	if role, ok := t.Role[guildID]; ok {
		return fmt.Sprintf("<@&%s>", role)
	}
	return t.Name
}

// AttemptTimer stores the timing information of one attempt. Duration is
// computed exactly once, at submit time, and round-trips verbatim.
type AttemptTimer struct {
	Start    *time.Time
	End      *time.Time
	Duration string
}

type attemptTimerDoc struct {
	Start    string `yaml:"start,omitempty"`
	End      string `yaml:"end,omitempty"`
	Duration string `yaml:"duration,omitempty"`
}

func (t AttemptTimer) MarshalYAML() (interface{}, error) {
	doc := attemptTimerDoc{Duration: t.Duration}
	if t.Start != nil {
		doc.Start = t.Start.Format(time.RFC3339Nano)
	}
	if t.End != nil {
		doc.End = t.End.Format(time.RFC3339Nano)
	}
	return doc, nil
}

func (t *AttemptTimer) UnmarshalYAML(value *yaml.Node) error {
	var doc attemptTimerDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	if doc.Start != "" {
		start, err := time.Parse(time.RFC3339Nano, doc.Start)
		if err != nil {
			return fmt.Errorf("timer start: %w", err)
		}
		t.Start = &start
	}
	if doc.End != "" {
		end, err := time.Parse(time.RFC3339Nano, doc.End)
		if err != nil {
			return fmt.Errorf("timer end: %w", err)
		}
		t.End = &end
	}
	t.Duration = doc.Duration
	return nil
}

// Attempt is the relation describing a team's progress on one puzzle.
type Attempt struct {
	Puzzle string       `yaml:"puzzle"`
	Team   string       `yaml:"team"`
	State  AttemptState `yaml:"state"`
	Timer  AttemptTimer `yaml:"timer"`
	Link   string       `yaml:"link,omitempty"`
}

// AttemptMatrix maps (puzzle id, team name) to the corresponding attempt. The
// matrix is dense: initialize creates an entry for every pair.
type AttemptMatrix map[string]map[string]*Attempt

// NewAttemptMatrix builds the dense cross product of all puzzles and teams,
// every attempt not started.
func NewAttemptMatrix(puzzles map[string]*Puzzle, teams map[string]*Team) AttemptMatrix {
	matrix := make(AttemptMatrix, len(puzzles))
	for pid := range puzzles {
		row := make(map[string]*Attempt, len(teams))
		for name := range teams {
			row[name] = &Attempt{Puzzle: pid, Team: name, State: StateNotStarted}
		}
		matrix[pid] = row
	}
	return matrix
}

// Roster bundles the puzzle and team collections for stores that persist both
// alongside the attempt matrix.
type Roster struct {
	Puzzles map[string]*Puzzle
	Teams   map[string]*Team
}
