package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rsarvar1a/riddler/marathon"
)

const defaultTitle = "Puzzle Marathon"

func baseEmbed(s *discordgo.Session) *discordgo.MessageEmbed {
	footer := &discordgo.MessageEmbedFooter{Text: "Riddler"}
	if s.State != nil && s.State.User != nil {
		footer.IconURL = s.State.User.AvatarURL("")
	}
	return &discordgo.MessageEmbed{
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    footer,
	}
}

func makeEmbed(s *discordgo.Session, title, description string) *discordgo.MessageEmbed {
	embed := baseEmbed(s)
	embed.Title = title
	if embed.Title == "" {
		embed.Title = defaultTitle
	}
	embed.Description = description
	return embed
}

func makeError(s *discordgo.Session, message string, err error) *discordgo.MessageEmbed {
	embed := baseEmbed(s)
	embed.Title = "Something went wrong..."
	embed.Description = message
	if err != nil {
		embed.Description = fmt.Sprintf("%s\n```\n%v\n```", message, err)
	}
	return embed
}

func unauthorized(s *discordgo.Session, message string) *discordgo.MessageEmbed {
	embed := baseEmbed(s)
	embed.Title = "Sorry, you can't do that."
	embed.Description = message
	return embed
}

func renderReply(s *discordgo.Session, reply marathon.Reply) *discordgo.MessageEmbed {
	switch {
	case reply.Unauthorized:
		return unauthorized(s, reply.Description)
	case reply.Failed:
		return makeError(s, reply.Description, reply.Err)
	default:
		return makeEmbed(s, reply.Title, reply.Description)
	}
}
