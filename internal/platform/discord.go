package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Reactor/pkg/emoji"
	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/latoulicious/Reactor/pkg/reactor"
)

// Discord API failure kinds
var (
	ErrForbidden   = errors.New("missing permissions")
	ErrNotFound    = errors.New("message or emoji no longer exists")
	ErrRateLimited = errors.New("rate limited")
)

// Discord implements reactor.Platform and emoji.Registry on a discordgo session
type Discord struct {
	session *discordgo.Session
	logger  logging.Logger
}

// NewDiscord creates a platform adapter over an open or soon-to-open session
func NewDiscord(session *discordgo.Session, logger logging.Logger) *Discord {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Discord{
		session: session,
		logger:  logger.With(logging.String("component", "discord")),
	}
}

// BotUserID returns the bot's own user id, or "" before the gateway is ready
func (d *Discord) BotUserID() string {
	if d.session.State == nil || d.session.State.User == nil {
		return ""
	}
	return d.session.State.User.ID
}

// RecentMessages fetches up to limit messages, newest first
func (d *Discord) RecentMessages(ctx context.Context, channelID string, limit int) ([]*reactor.Message, error) {
	msgs, err := d.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err)
	}

	guildID := d.guildOf(channelID)
	out := make([]*reactor.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := ConvertMessage(m)
		if msg.Ref.GuildID == "" {
			msg.Ref.GuildID = guildID
		}
		out = append(out, msg)
	}

	d.logger.Debug("Fetched recent messages",
		logging.String("channel_id", channelID),
		logging.Int("limit", limit),
		logging.Int("fetched", len(out)))
	return out, nil
}

// AddReaction adds token to the message as the bot
func (d *Discord) AddReaction(ctx context.Context, msg reactor.MessageRef, token emoji.Token) error {
	err := d.session.MessageReactionAdd(msg.ChannelID, msg.ID, token.APIName(), discordgo.WithContext(ctx))
	return classify(err)
}

// RemoveOwnReaction removes the bot's own token reaction from the message
func (d *Discord) RemoveOwnReaction(ctx context.Context, msg reactor.MessageRef, token emoji.Token) error {
	err := d.session.MessageReactionRemove(msg.ChannelID, msg.ID, token.APIName(), "@me", discordgo.WithContext(ctx))
	return classify(err)
}

// LookupEmoji resolves a custom emoji id in the guild's emoji list
func (d *Discord) LookupEmoji(ctx context.Context, guildID, emojiID string) (emoji.Token, error) {
	if guildID == "" {
		return "", emoji.ErrRegistryUnavailable
	}

	e, err := d.session.GuildEmoji(guildID, emojiID, discordgo.WithContext(ctx))
	if err != nil {
		d.logger.Debug("Emoji lookup failed",
			logging.String("guild_id", guildID),
			logging.String("emoji_id", emojiID),
			logging.Error(err))
		return "", classify(err)
	}
	return TokenFor(e), nil
}

func (d *Discord) guildOf(channelID string) string {
	if d.session.State == nil {
		return ""
	}
	ch, err := d.session.State.Channel(channelID)
	if err != nil {
		return ""
	}
	return ch.GuildID
}

// ConvertMessage maps a discordgo message onto the engine's message type
func ConvertMessage(m *discordgo.Message) *reactor.Message {
	ref := reactor.MessageRef{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}
	if m.Author != nil {
		ref.AuthorID = m.Author.ID
	}

	msg := &reactor.Message{Ref: ref}
	for _, r := range m.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		msg.Reactions = append(msg.Reactions, reactor.Reaction{
			Emoji: TokenFor(r.Emoji),
			Count: r.Count,
			Me:    r.Me,
		})
	}
	return msg
}

// MessageRefFor builds a reference for an inbound message event
func MessageRefFor(m *discordgo.Message) reactor.MessageRef {
	return ConvertMessage(m).Ref
}

// TokenFor returns the canonical token of a discordgo emoji
func TokenFor(e *discordgo.Emoji) emoji.Token {
	if e.ID == "" {
		return emoji.Token(e.Name)
	}
	return emoji.Token(e.MessageFormat())
}

// classify wraps Discord REST failures in the package's sentinel errors
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}
	return err
}
