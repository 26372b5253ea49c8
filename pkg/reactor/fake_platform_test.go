package reactor

import (
	"context"
	"errors"
	"sync"

	"github.com/latoulicious/Reactor/pkg/emoji"
)

const testBotID = "bot"

// platformCall records one reaction call made through fakePlatform.
type platformCall struct {
	Method    string // "add" or "remove"
	MessageID string
	Emoji     emoji.Token
}

// fakePlatform serves a fixed channel history and records reaction calls.
type fakePlatform struct {
	mu sync.Mutex

	// messages per channel, oldest first
	messages map[string][]*Message
	fetchErr error
	// failAdd makes AddReaction fail for the given message id and token
	failAdd    map[string]emoji.Token
	failRemove map[string]bool

	calls []platformCall
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		messages:   make(map[string][]*Message),
		failAdd:    make(map[string]emoji.Token),
		failRemove: make(map[string]bool),
	}
}

// addMessage appends a message to channel with the given marker reactions.
func (f *fakePlatform) addMessage(channelID, id string, reactions ...Reaction) *Message {
	msg := &Message{
		Ref:       MessageRef{ID: id, ChannelID: channelID, GuildID: "guild", AuthorID: "user"},
		Reactions: reactions,
	}
	f.messages[channelID] = append(f.messages[channelID], msg)
	return msg
}

func (f *fakePlatform) BotUserID() string { return testBotID }

func (f *fakePlatform) RecentMessages(_ context.Context, channelID string, limit int) ([]*Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	all := f.messages[channelID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return Chronological(all), nil
}

func (f *fakePlatform) AddReaction(_ context.Context, msg MessageRef, token emoji.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if bad, ok := f.failAdd[msg.ID]; ok && bad == token {
		return errors.New("missing permissions")
	}
	f.calls = append(f.calls, platformCall{Method: "add", MessageID: msg.ID, Emoji: token})
	return nil
}

func (f *fakePlatform) RemoveOwnReaction(_ context.Context, msg MessageRef, token emoji.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRemove[msg.ID] {
		return errors.New("unknown message")
	}
	f.calls = append(f.calls, platformCall{Method: "remove", MessageID: msg.ID, Emoji: token})
	return nil
}

func (f *fakePlatform) callsOf(method string) []platformCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []platformCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakePlatform) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func marker(t emoji.Token) Reaction {
	return Reaction{Emoji: t, Count: 1}
}

func own(t emoji.Token) Reaction {
	return Reaction{Emoji: t, Count: 1, Me: true}
}

// recordingObserver collects activities.
type recordingObserver struct {
	activities []Activity
}

func (r *recordingObserver) Observe(_ context.Context, a Activity) {
	r.activities = append(r.activities, a)
}

// recordingListener collects session snapshots.
type recordingListener struct {
	snapshots []Snapshot
}

func (r *recordingListener) SessionChanged(s Snapshot) {
	r.snapshots = append(r.snapshots, s)
}
