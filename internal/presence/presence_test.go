package presence

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Reactor/pkg/emoji"
	"github.com/latoulicious/Reactor/pkg/reactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUpdater struct {
	updates []discordgo.UpdateStatusData
	err     error
}

func (r *recordingUpdater) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	r.updates = append(r.updates, usd)
	return r.err
}

func TestManager_IdleByDefault(t *testing.T) {
	m := NewManager(nil, nil)

	data := m.Current()
	require.Len(t, data.Activities, 1)
	assert.Equal(t, "for /react_now", data.Activities[0].Name)
	assert.NoError(t, m.Refresh())
}

func TestManager_SessionChanged(t *testing.T) {
	updater := &recordingUpdater{}
	m := NewManager(updater, nil).WithChannelNames(func(id string) string {
		if id == "ch" {
			return "general"
		}
		return ""
	})

	m.SessionChanged(reactor.Snapshot{
		State:     reactor.Armed,
		ChannelID: "ch",
		Set:       reactor.ReactionSet{emoji.Token("👍"), emoji.Token("🎉")},
	})
	m.SessionChanged(reactor.Snapshot{State: reactor.Idle})

	require.Len(t, updater.updates, 2)
	armed := updater.updates[0].Activities[0]
	assert.Equal(t, "#general", armed.Name)
	assert.Equal(t, "reacting with 👍 🎉", armed.State)
	assert.Equal(t, "for /react_now", updater.updates[1].Activities[0].Name)
}

func TestManager_UnknownChannelFallsBackToID(t *testing.T) {
	m := NewManager(nil, nil)
	m.SessionChanged(reactor.Snapshot{State: reactor.Armed, ChannelID: "123", Set: reactor.ReactionSet{"👍"}})

	assert.Equal(t, "#123", m.Current().Activities[0].Name)
}

func TestManager_RefreshError(t *testing.T) {
	updater := &recordingUpdater{err: errors.New("gateway closed")}
	m := NewManager(updater, nil)

	assert.Error(t, m.Refresh())
}
