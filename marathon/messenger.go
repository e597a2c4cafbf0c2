package marathon

import "context"

// Caller is the identity behind a single command invocation: who invoked,
// from which guild and channel, and with which guild roles.
type Caller struct {
	ID        string
	GuildID   string
	ChannelID string
	Roles     []string
}

// Reply is a rendered message handed to the messaging sink. Ethereal replies
// auto-delete after a short interval; ephemeral replies are visible only to
// the caller. Failed replies render under an error title, with Err shown as a
// codeblock when set; Unauthorized renders as a permission denial.
type Reply struct {
	Title        string
	Description  string
	Failed       bool
	Err          error
	Unauthorized bool
	Ethereal     bool
	Ephemeral    bool
}

// Messenger delivers replies for one invocation. Confirmations, denials and
// errors all go through the same sink.
type Messenger interface {
	Send(ctx context.Context, reply Reply) error
}
