package marathon

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rsarvar1a/riddler/logging"
	"github.com/rsarvar1a/riddler/storage"
)

// Service implements the marathon commands. Every handler follows the same
// template: load state fresh, resolve identity, validate preconditions (deny
// and abort without mutating on failure), mutate in memory, persist, confirm.
type Service struct {
	roster   storage.RosterStorage
	attempts storage.AttemptStorage
	resolver *Resolver
	now      func() time.Time
}

func NewService(roster storage.RosterStorage, attempts storage.AttemptStorage, resolver *Resolver) *Service {
	return &Service{
		roster:   roster,
		attempts: attempts,
		resolver: resolver,
		now:      time.Now,
	}
}

// Initialize parses the uploaded puzzle and team files, builds the dense
// attempt matrix with every attempt not started, and replaces all prior
// state.
func (s *Service) Initialize(ctx context.Context, m Messenger, caller Caller, puzzlesRaw, teamsRaw []byte) error {
	if !s.ensureOrganizer(ctx, m, caller) {
		return nil
	}

	puzzles, err := ParsePuzzles(puzzlesRaw)
	if err != nil {
		logging.Log.Warnf("MARATHON: rejected puzzles upload: %v", err)
		return m.Send(ctx, Reply{Description: "Failed to load yaml file", Failed: true, Err: err, Ethereal: true, Ephemeral: true})
	}
	teams, err := ParseTeams(teamsRaw)
	if err != nil {
		logging.Log.Warnf("MARATHON: rejected teams upload: %v", err)
		return m.Send(ctx, Reply{Description: "Failed to load yaml file", Failed: true, Err: err, Ethereal: true, Ephemeral: true})
	}

	attempts := storage.NewAttemptMatrix(puzzles, teams)
	if err := s.attempts.Store(ctx, attempts, &storage.Roster{Puzzles: puzzles, Teams: teams}); err != nil {
		return s.fail(ctx, m, err)
	}

	logging.Log.Infof("MARATHON: initialized %d puzzles for %d teams", len(puzzles), len(teams))
	return m.Send(ctx, Reply{
		Description: fmt.Sprintf("Initialized %d puzzles for %d teams.", len(puzzles), len(teams)),
		Ephemeral:   true,
	})
}

// Unlock transitions a team's attempt from not started to in progress and
// reveals the puzzle link.
func (s *Service) Unlock(ctx context.Context, m Messenger, caller Caller, puzzleID string) error {
	attempts, puzzles, teams, err := s.load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	team := s.ensureTeam(ctx, m, caller, teams)
	if team == nil {
		return nil
	}
	if !s.ensureChannel(ctx, m, caller, team) {
		return nil
	}

	attempt := attempts[puzzleID][team.Name]
	if !s.ensureState(ctx, m, attempt.State, storage.StateNotStarted) {
		return nil
	}

	if err := attempt.Unlock(s.now()); err != nil {
		return s.fail(ctx, m, err)
	}
	if err := s.attempts.Store(ctx, attempts, nil); err != nil {
		return s.fail(ctx, m, err)
	}

	puzzle := puzzles[attempt.Puzzle]
	logging.Log.Infof("MARATHON: team %q unlocked puzzle %q", team.Name, puzzleID)
	return m.Send(ctx, Reply{
		Title:       fmt.Sprintf("#%s: %s", puzzleID, puzzle.Name),
		Description: fmt.Sprintf("Here's a [link to the puzzle](%s).", puzzle.URL),
	})
}

// Submit transitions a team's attempt from in progress to submitted,
// freezing the elapsed duration and recording the solution link.
func (s *Service) Submit(ctx context.Context, m Messenger, caller Caller, puzzleID, link string) error {
	attempts, puzzles, teams, err := s.load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	team := s.ensureTeam(ctx, m, caller, teams)
	if team == nil {
		return nil
	}
	if !s.ensureChannel(ctx, m, caller, team) {
		return nil
	}

	attempt := attempts[puzzleID][team.Name]
	if !s.ensureState(ctx, m, attempt.State, storage.StateInProgress) {
		return nil
	}

	if err := attempt.Submit(link, s.now()); err != nil {
		return s.fail(ctx, m, err)
	}
	if err := s.attempts.Store(ctx, attempts, nil); err != nil {
		return s.fail(ctx, m, err)
	}

	puzzle := puzzles[attempt.Puzzle]
	logging.Log.Infof("MARATHON: team %q submitted puzzle %q", team.Name, puzzleID)
	return m.Send(ctx, Reply{
		Title:       fmt.Sprintf("#%s: %s", puzzleID, puzzle.Name),
		Description: fmt.Sprintf("```elapsed: %s```", attempt.Timer.Duration),
	})
}

// AddChannel registers the invocation channel for a team. Adding a channel
// that is already registered is a no-op.
func (s *Service) AddChannel(ctx context.Context, m Messenger, caller Caller, teamName string) error {
	if !s.ensureOrganizer(ctx, m, caller) {
		return nil
	}

	attempts, _, teams, err := s.load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	teams[teamName].AddChannel(caller.ChannelID)
	if err := s.attempts.Store(ctx, attempts, &storage.Roster{Teams: teams}); err != nil {
		return s.fail(ctx, m, err)
	}

	return m.Send(ctx, Reply{
		Description: fmt.Sprintf("Added this channel to %s.", teams[teamName].Mention(caller.GuildID)),
		Ethereal:    true,
		Ephemeral:   true,
	})
}

// RemoveChannel unregisters the invocation channel from a team. Removing an
// absent channel is a no-op.
func (s *Service) RemoveChannel(ctx context.Context, m Messenger, caller Caller, teamName string) error {
	if !s.ensureOrganizer(ctx, m, caller) {
		return nil
	}

	attempts, _, teams, err := s.load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	teams[teamName].RemoveChannel(caller.ChannelID)
	if err := s.attempts.Store(ctx, attempts, &storage.Roster{Teams: teams}); err != nil {
		return s.fail(ctx, m, err)
	}

	return m.Send(ctx, Reply{
		Description: fmt.Sprintf("Removed this channel from %s.", teams[teamName].Mention(caller.GuildID)),
		Ethereal:    true,
		Ephemeral:   true,
	})
}

// AddPlayer puts a player on a team, provided they are not on one already.
func (s *Service) AddPlayer(ctx context.Context, m Messenger, caller Caller, player Caller, teamName string) error {
	if !s.ensureOrganizer(ctx, m, caller) {
		return nil
	}

	attempts, _, teams, err := s.load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	if curr := s.resolver.FindTeam(player, teams); curr != nil {
		return m.Send(ctx, Reply{
			Description: fmt.Sprintf("<@%s> is already on %s.", player.ID, curr.Mention(caller.GuildID)),
			Ethereal:    true,
			Ephemeral:   true,
		})
	}

	teams[teamName].Members = append(teams[teamName].Members, player.ID)
	if err := s.attempts.Store(ctx, attempts, &storage.Roster{Teams: teams}); err != nil {
		return s.fail(ctx, m, err)
	}

	return m.Send(ctx, Reply{
		Description: fmt.Sprintf("Added <@%s> to %s.", player.ID, teams[teamName].Mention(caller.GuildID)),
		Ethereal:    true,
		Ephemeral:   true,
	})
}

// RemovePlayer takes a player off their current team.
func (s *Service) RemovePlayer(ctx context.Context, m Messenger, caller Caller, player Caller, teamName string) error {
	if !s.ensureOrganizer(ctx, m, caller) {
		return nil
	}

	attempts, _, teams, err := s.load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	curr := s.resolver.FindTeam(player, teams)
	if curr == nil {
		return m.Send(ctx, Reply{
			Description: fmt.Sprintf("<@%s> is not on a team.", player.ID),
			Ethereal:    true,
			Ephemeral:   true,
		})
	}

	teams[teamName].RemoveMember(player.ID)
	if err := s.attempts.Store(ctx, attempts, &storage.Roster{Teams: teams}); err != nil {
		return s.fail(ctx, m, err)
	}

	return m.Send(ctx, Reply{
		Description: fmt.Sprintf("Removed <@%s> from %s.", player.ID, curr.Mention(caller.GuildID)),
		Ethereal:    true,
		Ephemeral:   true,
	})
}

// SetRole binds a guild role to a team for the invocation guild.
func (s *Service) SetRole(ctx context.Context, m Messenger, caller Caller, teamName, roleID string) error {
	if !s.ensureOrganizer(ctx, m, caller) {
		return nil
	}

	attempts, _, teams, err := s.load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	teams[teamName].Role[caller.GuildID] = roleID
	if err := s.attempts.Store(ctx, attempts, &storage.Roster{Teams: teams}); err != nil {
		return s.fail(ctx, m, err)
	}

	return m.Send(ctx, Reply{
		Description: fmt.Sprintf("Team %q set to %s in this server.", teamName, teams[teamName].Mention(caller.GuildID)),
		Ethereal:    true,
		Ephemeral:   true,
	})
}

// ListPlayers reports a team's member list. No authorization required.
func (s *Service) ListPlayers(ctx context.Context, m Messenger, caller Caller, teamName string) error {
	_, teams, err := s.roster.Load(ctx)
	if err != nil {
		return s.fail(ctx, m, err)
	}

	team := teams[teamName]
	mention := team.Mention(caller.GuildID)

	description := fmt.Sprintf("There are no players on %s.", mention)
	if len(team.Members) > 0 {
		mentions := make([]string, 0, len(team.Members))
		for _, member := range team.Members {
			mentions = append(mentions, fmt.Sprintf("- <@%s>", member))
		}
		description = fmt.Sprintf("__%s members__\n%s", mention, strings.Join(mentions, "\n"))
	}

	return m.Send(ctx, Reply{Description: description, Ephemeral: true})
}

// HELPERS

func (s *Service) load(ctx context.Context) (storage.AttemptMatrix, map[string]*storage.Puzzle, map[string]*storage.Team, error) {
	attempts, err := s.attempts.Load(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	puzzles, teams, err := s.roster.Load(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return attempts, puzzles, teams, nil
}

func (s *Service) ensureOrganizer(ctx context.Context, m Messenger, caller Caller) bool {
	if !s.resolver.IsOrganizer(caller.ID) {
		logging.Log.Warnf("MARATHON: %s attempted an organizer command", caller.ID)
		_ = m.Send(ctx, Reply{
			Description:  "You need to be an Organizer to do that.",
			Unauthorized: true,
			Ethereal:     true,
			Ephemeral:    true,
		})
		return false
	}
	return true
}

func (s *Service) ensureTeam(ctx context.Context, m Messenger, caller Caller, teams map[string]*storage.Team) *storage.Team {
	team := s.resolver.FindTeam(caller, teams)
	if team == nil {
		_ = m.Send(ctx, Reply{
			Description:  "You need to be on a team to do that.",
			Unauthorized: true,
			Ethereal:     true,
			Ephemeral:    true,
		})
	}
	return team
}

func (s *Service) ensureChannel(ctx context.Context, m Messenger, caller Caller, team *storage.Team) bool {
	if !s.resolver.InAuthorizedChannel(caller.ChannelID, team) {
		allowed := make([]string, 0, len(team.Channels))
		for _, ch := range team.Channels {
			allowed = append(allowed, fmt.Sprintf("- <#%s>", ch))
		}
		_ = m.Send(ctx, Reply{
			Description: fmt.Sprintf("You are not allowed to do that in this channel. Try one of these:\n%s", strings.Join(allowed, "\n")),
			Failed:      true,
		})
		return false
	}
	return true
}

func (s *Service) ensureState(ctx context.Context, m Messenger, state, expected storage.AttemptState) bool {
	if state != expected {
		_ = m.Send(ctx, Reply{
			Description: fmt.Sprintf("This puzzle is %s; expected it to be %s!", state, expected),
			Failed:      true,
			Ethereal:    true,
			Ephemeral:   true,
		})
		return false
	}
	return true
}

func (s *Service) fail(ctx context.Context, m Messenger, err error) error {
	logging.Log.Errorf("MARATHON: command failed: %v", err)
	_ = m.Send(ctx, Reply{Failed: true, Err: err, Ethereal: true, Ephemeral: true})
	return err
}

func sortedTeamNames(teams map[string]*storage.Team) []string {
	names := make([]string, 0, len(teams))
	for name := range teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
