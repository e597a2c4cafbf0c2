package marathon

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rsarvar1a/riddler/storage"
)

// Choice is one autocomplete suggestion.
type Choice struct {
	Name  string
	Value string
}

// DisplayPuzzle is the display string puzzles are matched against in
// autocompletion.
func DisplayPuzzle(p *storage.Puzzle) string {
	return fmt.Sprintf("#%s: %q", p.ID, p.Name)
}

// AutocompleteTeams suggests team names containing the partial input. Any
// load failure yields an empty list rather than an error.
func (s *Service) AutocompleteTeams(ctx context.Context, partial string) []Choice {
	_, teams, err := s.roster.Load(ctx)
	if err != nil {
		return nil
	}

	choices := make([]Choice, 0, len(teams))
	for _, name := range sortedTeamNames(teams) {
		if strings.Contains(name, partial) {
			choices = append(choices, Choice{Name: name, Value: name})
		}
	}
	return choices
}

// AutocompleteUnlockable suggests puzzles the caller's team has not started
// yet. Callers without a team get an empty list.
func (s *Service) AutocompleteUnlockable(ctx context.Context, caller Caller, partial string) []Choice {
	return s.autocompleteInState(ctx, caller, partial, storage.StateNotStarted)
}

// AutocompleteSubmittable suggests puzzles the caller's team has in progress.
func (s *Service) AutocompleteSubmittable(ctx context.Context, caller Caller, partial string) []Choice {
	return s.autocompleteInState(ctx, caller, partial, storage.StateInProgress)
}

func (s *Service) autocompleteInState(ctx context.Context, caller Caller, partial string, state storage.AttemptState) []Choice {
	attempts, puzzles, teams, err := s.load(ctx)
	if err != nil {
		return nil
	}
	team := s.resolver.FindTeam(caller, teams)
	if team == nil {
		return nil
	}

	ids := make([]string, 0, len(puzzles))
	for id := range puzzles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var choices []Choice
	for _, id := range ids {
		attempt := attempts[id][team.Name]
		if attempt == nil || attempt.State != state {
			continue
		}
		display := DisplayPuzzle(puzzles[id])
		if strings.Contains(display, partial) {
			choices = append(choices, Choice{Name: display, Value: id})
		}
	}
	return choices
}
