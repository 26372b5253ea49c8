package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Reactor/internal/commands"
	"github.com/latoulicious/Reactor/internal/platform"
	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/latoulicious/Reactor/pkg/reactor"
)

// Engine is the set of engine operations the handlers dispatch to
type Engine interface {
	StartLive(ctx context.Context, inv reactor.Invocation, emojiText string) reactor.Result
	StopLive(ctx context.Context, inv reactor.Invocation) reactor.Result
	ScanPast(ctx context.Context, inv reactor.Invocation, emojiText string, window int) reactor.Result
	Undo(ctx context.Context, inv reactor.Invocation) reactor.Result
	BulkRemove(ctx context.Context, inv reactor.Invocation, window int) reactor.Result
	HandleMessage(ctx context.Context, msg reactor.MessageRef)
}

// Responder is the part of a discordgo session used to answer interactions
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Defaults holds the number_of_messages fallbacks
type Defaults struct {
	ScanWindow   int
	RemoveWindow int
}

// Router routes gateway events to the engine. Engine work runs to completion
// under a context that is only cancelled by Close.
type Router struct {
	engine   Engine
	logger   logging.Logger
	defaults Defaults

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRouter creates a router
func NewRouter(engine Engine, defaults Defaults, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NullLogger()
	}
	if defaults.ScanWindow <= 0 {
		defaults.ScanWindow = 32
	}
	if defaults.RemoveWindow <= 0 {
		defaults.RemoveWindow = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		engine:   engine,
		logger:   logger.With(logging.String("component", "handlers")),
		defaults: defaults,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close cancels in-flight engine work on shutdown
func (r *Router) Close() {
	r.cancel()
}

// SlashCommandHandler handles slash command interactions
func (r *Router) SlashCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r.HandleInteraction(s, i)
}

// HandleInteraction acknowledges the command ephemerally, runs it, then edits
// the acknowledgement with the resulting status.
func (r *Router) HandleInteraction(resp Responder, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	user := interactionUser(i.Interaction)
	if user != nil && user.Bot {
		return
	}

	err := resp.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		r.logger.Error("Error acknowledging interaction", logging.Error(err))
		return
	}

	ctx := r.ctx
	data := i.ApplicationCommandData()
	inv := invocationFor(i.Interaction)
	r.logger.Debug("Dispatching command",
		logging.String("command", data.Name),
		logging.String("channel_id", inv.ChannelID),
		logging.String("user_id", inv.UserID))

	status := r.dispatch(ctx, resp, i.Interaction, data, inv)
	r.edit(resp, i.Interaction, status)
}

func (r *Router) dispatch(ctx context.Context, resp Responder, it *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, inv reactor.Invocation) string {
	switch data.Name {
	case reactor.OpStartLive:
		return r.engine.StartLive(ctx, inv, commands.StringOption(data.Options, commands.OptionEmojis)).Status
	case reactor.OpStopLive:
		return r.engine.StopLive(ctx, inv).Status
	case reactor.OpScanPast:
		window := commands.IntOption(data.Options, commands.OptionMessages, r.defaults.ScanWindow)
		return r.engine.ScanPast(ctx, inv, commands.StringOption(data.Options, commands.OptionEmojis), window).Status
	case reactor.OpUndo:
		return r.engine.Undo(ctx, inv).Status
	case reactor.OpBulkRemove:
		window := reactor.ClampWindow(commands.IntOption(data.Options, commands.OptionMessages, r.defaults.RemoveWindow))
		r.edit(resp, it, reactor.RemovingStatus(window))
		return r.engine.BulkRemove(ctx, inv, window).Status
	default:
		return "Unknown command."
	}
}

func (r *Router) edit(resp Responder, it *discordgo.Interaction, status string) {
	if _, err := resp.InteractionResponseEdit(it, &discordgo.WebhookEdit{Content: &status}); err != nil {
		r.logger.Error("Error sending interaction response", logging.Error(err))
	}
}

// MessageHandler feeds every new guild message to the engine
func (r *Router) MessageHandler(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	r.engine.HandleMessage(r.ctx, platform.MessageRefFor(m.Message))
}

// interactionUser returns the invoking user, in guilds or DMs
func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func invocationFor(i *discordgo.Interaction) reactor.Invocation {
	inv := reactor.Invocation{GuildID: i.GuildID, ChannelID: i.ChannelID}
	if u := interactionUser(i); u != nil {
		inv.UserID = u.ID
	}
	return inv
}
