package marathon

import (
	"github.com/rsarvar1a/riddler/storage"
)

// Resolver answers the authorization questions the command handlers ask:
// organizer status, team membership and channel access.
type Resolver struct {
	owners map[string]struct{}
}

func NewResolver(owners []string) *Resolver {
	set := make(map[string]struct{}, len(owners))
	for _, id := range owners {
		set[id] = struct{}{}
	}
	return &Resolver{owners: set}
}

// IsOrganizer reports whether the caller is in the configured owner set.
func (r *Resolver) IsOrganizer(callerID string) bool {
	_, ok := r.owners[callerID]
	return ok
}

// FindTeam returns the first team the caller belongs to, checking the team's
// role grant for the caller's guild before direct membership. Iteration is in
// team-name order; a caller matching two teams gets whichever sorts first,
// and no conflict is detected or reported.
func (r *Resolver) FindTeam(caller Caller, teams map[string]*storage.Team) *storage.Team {
	for _, name := range sortedTeamNames(teams) {
		team := teams[name]
		if role, ok := team.Role[caller.GuildID]; ok {
			for _, granted := range caller.Roles {
				if granted == role {
					return team
				}
			}
		}
		if team.Includes(caller.ID) {
			return team
		}
	}
	return nil
}

// InAuthorizedChannel reports whether the invocation channel is registered to
// the team.
func (r *Resolver) InAuthorizedChannel(channelID string, team *storage.Team) bool {
	return team.HasChannel(channelID)
}
