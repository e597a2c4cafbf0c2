package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/rsarvar1a/riddler/marathon"
)

type optionValues map[string]*discordgo.ApplicationCommandInteractionDataOption

type handlerFunc func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error

type completeFunc func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, partial string) []marathon.Choice

// command declares one /marathon subcommand: its registration payload, its
// handler, and an autocomplete provider per completable option.
type command struct {
	name        string
	description string
	options     []*discordgo.ApplicationCommandOption
	run         handlerFunc
	complete    map[string]completeFunc
}

func teamOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         "team",
		Description:  description,
		Required:     true,
		Autocomplete: true,
	}
}

func completeTeams(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, partial string) []marathon.Choice {
	return b.service.AutocompleteTeams(ctx, partial)
}

// commandTable is the full registry of marathon subcommands.
func commandTable() []command {
	return []command{
		{
			name:        "initialize",
			description: "Initialize a set of puzzles and teams",
			options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "puzzles",
					Description: "a puzzles.yaml file",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "teams",
					Description: "a teams.yaml file",
					Required:    true,
				},
			},
			run: runInitialize,
		},
		{
			name:        "unlock",
			description: "Unlock a puzzle and start solving",
			options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "puzzle",
					Description:  "the puzzle",
					Required:     true,
					Autocomplete: true,
				},
			},
			run: runUnlock,
			complete: map[string]completeFunc{
				"puzzle": func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, partial string) []marathon.Choice {
					return b.service.AutocompleteUnlockable(ctx, callerFrom(ic), partial)
				},
			},
		},
		{
			name:        "submit",
			description: "Submit a solution to an unlocked puzzle",
			options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "puzzle",
					Description:  "the puzzle",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "link",
					Description: "a message link for your solution",
					Required:    true,
				},
			},
			run: runSubmit,
			complete: map[string]completeFunc{
				"puzzle": func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, partial string) []marathon.Choice {
					return b.service.AutocompleteSubmittable(ctx, callerFrom(ic), partial)
				},
			},
		},
		{
			name:        "add_channel",
			description: "Add a channel to a team",
			options:     []*discordgo.ApplicationCommandOption{teamOption("the team to configure")},
			run: func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
				return b.service.AddChannel(ctx, b.messenger(ic), callerFrom(ic), opts["team"].StringValue())
			},
			complete: map[string]completeFunc{"team": completeTeams},
		},
		{
			name:        "remove_channel",
			description: "Remove a channel from a team",
			options:     []*discordgo.ApplicationCommandOption{teamOption("the team to configure")},
			run: func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
				return b.service.RemoveChannel(ctx, b.messenger(ic), callerFrom(ic), opts["team"].StringValue())
			},
			complete: map[string]completeFunc{"team": completeTeams},
		},
		{
			name:        "add_player",
			description: "Add a player to a team",
			options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "player",
					Description: "the player to add",
					Required:    true,
				},
				teamOption("the team to configure"),
			},
			run: func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
				return b.service.AddPlayer(ctx, b.messenger(ic), callerFrom(ic), playerFrom(ic, opts["player"]), opts["team"].StringValue())
			},
			complete: map[string]completeFunc{"team": completeTeams},
		},
		{
			name:        "remove_player",
			description: "Remove a player from a team",
			options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "player",
					Description: "the player to remove",
					Required:    true,
				},
				teamOption("the team to configure"),
			},
			run: func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
				return b.service.RemovePlayer(ctx, b.messenger(ic), callerFrom(ic), playerFrom(ic, opts["player"]), opts["team"].StringValue())
			},
			complete: map[string]completeFunc{"team": completeTeams},
		},
		{
			name:        "set_role",
			description: "Set a team role",
			options: []*discordgo.ApplicationCommandOption{
				teamOption("the team to configure"),
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "the team role",
					Required:    true,
				},
			},
			run: func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
				return b.service.SetRole(ctx, b.messenger(ic), callerFrom(ic), opts["team"].StringValue(), opts["role"].Value.(string))
			},
			complete: map[string]completeFunc{"team": completeTeams},
		},
		{
			name:        "list_players",
			description: "List all players on a team",
			options:     []*discordgo.ApplicationCommandOption{teamOption("the team to inspect")},
			run: func(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
				return b.service.ListPlayers(ctx, b.messenger(ic), callerFrom(ic), opts["team"].StringValue())
			},
			complete: map[string]completeFunc{"team": completeTeams},
		},
	}
}

// registration converts the table into the single /marathon application
// command payload.
func registration(commands []command) *discordgo.ApplicationCommand {
	subcommands := make([]*discordgo.ApplicationCommandOption, 0, len(commands))
	for _, cmd := range commands {
		subcommands = append(subcommands, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.name,
			Description: cmd.description,
			Options:     cmd.options,
		})
	}
	return &discordgo.ApplicationCommand{
		Name:        "marathon",
		Description: "Authenticated puzzle-fetching for the marathon",
		Options:     subcommands,
	}
}

func runInitialize(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
	data := ic.ApplicationCommandData()

	fetch := func(name string) ([]byte, error) {
		opt, ok := opts[name]
		if !ok {
			return nil, fmt.Errorf("missing %s attachment", name)
		}
		if data.Resolved == nil {
			return nil, fmt.Errorf("unresolved %s attachment", name)
		}
		attachment, ok := data.Resolved.Attachments[opt.Value.(string)]
		if !ok {
			return nil, fmt.Errorf("unresolved %s attachment", name)
		}
		return b.fetchAttachment(ctx, attachment.URL)
	}

	puzzlesRaw, err := fetch("puzzles")
	if err != nil {
		return err
	}
	teamsRaw, err := fetch("teams")
	if err != nil {
		return err
	}
	return b.service.Initialize(ctx, b.messenger(ic), callerFrom(ic), puzzlesRaw, teamsRaw)
}

func runUnlock(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
	return b.service.Unlock(ctx, b.messenger(ic), callerFrom(ic), opts["puzzle"].StringValue())
}

func runSubmit(ctx context.Context, b *Bot, ic *discordgo.InteractionCreate, opts optionValues) error {
	return b.service.Submit(ctx, b.messenger(ic), callerFrom(ic), opts["puzzle"].StringValue(), opts["link"].StringValue())
}

// callerFrom extracts the invoking identity from a guild interaction.
func callerFrom(ic *discordgo.InteractionCreate) marathon.Caller {
	caller := marathon.Caller{
		GuildID:   ic.GuildID,
		ChannelID: ic.ChannelID,
	}
	if ic.Member != nil && ic.Member.User != nil {
		caller.ID = ic.Member.User.ID
		caller.Roles = ic.Member.Roles
	} else if ic.User != nil {
		caller.ID = ic.User.ID
	}
	return caller
}

// playerFrom resolves a user option into an identity, including the member's
// guild roles when Discord resolved them.
func playerFrom(ic *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) marathon.Caller {
	id := opt.Value.(string)
	player := marathon.Caller{ID: id, GuildID: ic.GuildID, ChannelID: ic.ChannelID}
	if resolved := ic.ApplicationCommandData().Resolved; resolved != nil {
		if member, ok := resolved.Members[id]; ok {
			player.Roles = member.Roles
		}
	}
	return player
}
