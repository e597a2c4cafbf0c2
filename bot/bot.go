package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rsarvar1a/riddler/logging"
	"github.com/rsarvar1a/riddler/marathon"
)

// etherealTTL is how long an ethereal reply stays up before self-deleting.
const etherealTTL = 5 * time.Second

// maxChoices is Discord's cap on autocomplete suggestions.
const maxChoices = 25

// Bot owns the gateway session and adapts Discord interactions into marathon
// service calls.
type Bot struct {
	config   *Config
	service  *marathon.Service
	session  *discordgo.Session
	table    []command
	commands map[string]command
	client   *http.Client
}

func New(config *Config, service *marathon.Service, token string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	b := &Bot{
		config:   config,
		service:  service,
		session:  session,
		table:    commandTable(),
		commands: map[string]command{},
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, cmd := range b.table {
		b.commands[cmd.name] = cmd
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Run opens the gateway, registers the command group and blocks until an
// interrupt.
func (b *Bot) Run() error {
	if err := b.session.Open(); err != nil {
		return err
	}
	defer b.session.Close()

	// Guild-scoped registration propagates immediately; global takes an hour.
	if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.HomeGuild, registration(b.table)); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	logging.Log.Infof("BOT: registered %d marathon subcommands", len(b.commands))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logging.Log.Info("BOT: shutting down")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logging.Log.Infof("BOT: logged in as %s#%s", r.User.Username, r.User.Discriminator)
}

func (b *Bot) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	switch ic.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchCommand(ic)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.dispatchAutocomplete(ic)
	}
}

// dispatchCommand routes a /marathon invocation to its subcommand handler.
func (b *Bot) dispatchCommand(ic *discordgo.InteractionCreate) {
	data := ic.ApplicationCommandData()
	if data.Name != "marathon" || len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	cmd, ok := b.commands[sub.Name]
	if !ok {
		logging.Log.Warnf("BOT: unknown subcommand %q", sub.Name)
		return
	}

	ctx := context.Background()
	runCommand(ctx, sub.Name, b.messenger(ic), func() error {
		return cmd.run(ctx, b, ic, collectOptions(sub.Options))
	})
}

// runCommand executes one subcommand handler. Each invocation is isolated: a
// panic (for example a lookup of a team that does not exist) kills that
// command only and reports it to the caller, leaving persisted state as the
// handler left it.
func runCommand(ctx context.Context, name string, m marathon.Messenger, run func() error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Log.Errorf("BOT: %s panicked: %v", name, r)
			_ = m.Send(ctx, marathon.Reply{
				Failed:    true,
				Err:       fmt.Errorf("%v", r),
				Ethereal:  true,
				Ephemeral: true,
			})
		}
	}()

	if err := run(); err != nil {
		logging.Log.Errorf("BOT: %s failed: %v", name, err)
	}
}

func (b *Bot) dispatchAutocomplete(ic *discordgo.InteractionCreate) {
	data := ic.ApplicationCommandData()
	if data.Name != "marathon" || len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	cmd, ok := b.commands[sub.Name]
	if !ok {
		return
	}

	var choices []marathon.Choice
	for _, opt := range sub.Options {
		if !opt.Focused {
			continue
		}
		if provider, ok := cmd.complete[opt.Name]; ok {
			choices = provider(context.Background(), b, ic, opt.StringValue())
		}
		break
	}
	if len(choices) > maxChoices {
		choices = choices[:maxChoices]
	}

	payload := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, choice := range choices {
		payload = append(payload, &discordgo.ApplicationCommandOptionChoice{Name: choice.Name, Value: choice.Value})
	}
	err := b.session.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: payload},
	})
	if err != nil {
		logging.Log.Errorf("BOT: autocomplete response failed: %v", err)
	}
}

func collectOptions(options []*discordgo.ApplicationCommandInteractionDataOption) optionValues {
	values := make(optionValues, len(options))
	for _, opt := range options {
		values[opt.Name] = opt
	}
	return values
}

// fetchAttachment downloads the raw bytes of an uploaded file.
func (b *Bot) fetchAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment fetch returned %s", res.Status)
	}
	return io.ReadAll(res.Body)
}

// interactionMessenger is the marathon.Messenger for one interaction.
type interactionMessenger struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (b *Bot) messenger(ic *discordgo.InteractionCreate) marathon.Messenger {
	return &interactionMessenger{session: b.session, interaction: ic.Interaction}
}

func (m *interactionMessenger) Send(ctx context.Context, reply marathon.Reply) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{renderReply(m.session, reply)},
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := m.session.InteractionRespond(m.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return err
	}

	if reply.Ethereal {
		interaction := m.interaction
		session := m.session
		time.AfterFunc(etherealTTL, func() {
			if err := session.InteractionResponseDelete(interaction); err != nil {
				logging.Log.Debugf("BOT: failed to delete ethereal reply: %v", err)
			}
		})
	}
	return nil
}
