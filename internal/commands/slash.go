package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/latoulicious/Reactor/pkg/reactor"
)

// Option names shared by the command definitions and the handlers
const (
	OptionEmojis   = "emojis"
	OptionMessages = "number_of_messages"
)

// Registrar is the part of a discordgo session used to manage commands
type Registrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// Definitions returns the bot's slash commands. scanWindow and removeWindow
// are the defaults advertised for number_of_messages.
func Definitions(scanWindow, removeWindow int) []*discordgo.ApplicationCommand {
	minWindow := float64(1)

	windowOption := func(def int, what string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        OptionMessages,
			Description: fmt.Sprintf("How many recent messages to %s (default %d, max %d)", what, def, reactor.MaxWindow),
			MinValue:    &minWindow,
			MaxValue:    reactor.MaxWindow,
		}
	}
	emojiOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptionEmojis,
		Description: "Emojis to react with, unicode or custom",
		Required:    true,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        reactor.OpStartLive,
			Description: "React to every new message in this channel",
			Options:     []*discordgo.ApplicationCommandOption{emojiOption},
		},
		{
			Name:        reactor.OpStopLive,
			Description: "Stop reacting to new messages",
		},
		{
			Name:        reactor.OpScanPast,
			Description: "React to recent messages between ⬆️ and ⬇️ markers",
			Options: []*discordgo.ApplicationCommandOption{
				emojiOption,
				windowOption(scanWindow, "scan"),
			},
		},
		{
			Name:        reactor.OpUndo,
			Description: "Remove the reactions this bot added since the last start",
		},
		{
			Name:        reactor.OpBulkRemove,
			Description: "Remove this bot's reactions from recent messages",
			Options: []*discordgo.ApplicationCommandOption{
				windowOption(removeWindow, "clean"),
			},
		},
	}
}

// RegisterSlashCommands overwrites the application's commands in one call.
// An empty guildID registers them globally.
func RegisterSlashCommands(r Registrar, appID, guildID string, defs []*discordgo.ApplicationCommand, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NullLogger()
	}
	scope := "global"
	if guildID != "" {
		scope = "guild:" + guildID
	}

	created, err := r.ApplicationCommandBulkOverwrite(appID, guildID, defs)
	if err != nil {
		logger.Error("Failed to register slash commands", logging.String("scope", scope), logging.Error(err))
		return fmt.Errorf("failed to register slash commands: %w", err)
	}

	for _, cmd := range created {
		logger.Debug("Registered command", logging.String("command", cmd.Name))
	}
	logger.Info("Slash commands registered", logging.String("scope", scope), logging.Int("count", len(created)))
	return nil
}

// DeleteAllSlashCommands deletes every command in the given scope
func DeleteAllSlashCommands(r Registrar, appID, guildID string, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NullLogger()
	}

	existing, err := r.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("failed to fetch commands: %w", err)
	}

	for _, cmd := range existing {
		if err := r.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			return fmt.Errorf("failed to delete command %s: %w", cmd.Name, err)
		}
		logger.Info("Deleted command", logging.String("command", cmd.Name))
	}
	return nil
}
