package reactor

import (
	"context"
	"time"

	"github.com/latoulicious/Reactor/pkg/emoji"
)

// Marker reactions delimiting a range for retroactive reactions.
const (
	MarkerOpen  emoji.Token = "\u2b06\ufe0f" // ⬆️
	MarkerClose emoji.Token = "\u2b07\ufe0f" // ⬇️
)

// MaxWindow is the largest number of messages a single fetch may cover.
const MaxWindow = 100

// ClampWindow bounds a requested window to [1, MaxWindow].
func ClampWindow(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxWindow {
		return MaxWindow
	}
	return n
}

// MessageRef identifies a single chat message. Channel, guild and author are
// carried along for routing and diagnostics.
type MessageRef struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
}

// ReactionSet is an ordered list of tokens applied together.
type ReactionSet []emoji.Token

// String renders the set as space-separated tokens.
func (s ReactionSet) String() string {
	return emoji.Render(s)
}

// Reaction is one reaction currently on a fetched message.
type Reaction struct {
	Emoji emoji.Token
	Count int
	// Me is true when the bot itself is one of the reacting users.
	Me bool
}

// Message is a fetched message together with its reactions.
type Message struct {
	Ref       MessageRef
	Reactions []Reaction
}

// Has reports whether the message carries a reaction matching token,
// ignoring emoji variation selectors.
func (m *Message) Has(token emoji.Token) bool {
	want := token.Canonical()
	for _, r := range m.Reactions {
		if r.Emoji.Canonical() == want {
			return true
		}
	}
	return false
}

// Platform is the messaging surface the engine drives.
type Platform interface {
	// BotUserID returns the bot's own user id.
	BotUserID() string
	// RecentMessages returns up to limit messages, newest first.
	RecentMessages(ctx context.Context, channelID string, limit int) ([]*Message, error)
	AddReaction(ctx context.Context, msg MessageRef, token emoji.Token) error
	// RemoveOwnReaction removes the bot's own reaction only.
	RemoveOwnReaction(ctx context.Context, msg MessageRef, token emoji.Token) error
}

// Invocation carries who ran a command and where.
type Invocation struct {
	GuildID   string
	ChannelID string
	UserID    string
}

// Operation names used in activities
const (
	OpStartLive  = "react_now"
	OpStopLive   = "react_stop"
	OpScanPast   = "react_past"
	OpUndo       = "undo"
	OpBulkRemove = "remove"
	OpLive       = "live"
)

// Activity summarises one completed operation.
type Activity struct {
	ID        string
	Operation string
	GuildID   string
	ChannelID string
	UserID    string
	Applied   int
	Removed   int
	Failed    int
	Status    string
	At        time.Time
}

// Observer receives an Activity after every operation.
type Observer interface {
	Observe(ctx context.Context, activity Activity)
}

// StateListener is told whenever the live session changes. It is called with
// the engine locked and must not call back into the engine.
type StateListener interface {
	SessionChanged(snapshot Snapshot)
}
