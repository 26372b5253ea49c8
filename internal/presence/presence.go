package presence

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Reactor/pkg/logging"
	"github.com/latoulicious/Reactor/pkg/reactor"
)

// StatusUpdater is the part of a discordgo session presence needs
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Manager mirrors the engine's session state in the bot's presence
type Manager struct {
	updater StatusUpdater
	logger  logging.Logger

	mu       sync.RWMutex
	snapshot reactor.Snapshot
	channels func(channelID string) string
}

// NewManager creates a presence manager. Until the first state change it
// shows the idle presence.
func NewManager(updater StatusUpdater, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Manager{
		updater: updater,
		logger:  logger.With(logging.String("component", "presence")),
	}
}

// WithChannelNames resolves channel ids to names for the armed presence
func (m *Manager) WithChannelNames(resolve func(channelID string) string) *Manager {
	m.mu.Lock()
	m.channels = resolve
	m.mu.Unlock()
	return m
}

// SessionChanged implements reactor.StateListener. It runs under the engine
// lock, so it only records the snapshot and pushes the update.
func (m *Manager) SessionChanged(s reactor.Snapshot) {
	m.mu.Lock()
	m.snapshot = s
	m.mu.Unlock()

	m.Refresh()
}

// Refresh pushes the current presence to Discord
func (m *Manager) Refresh() error {
	if m.updater == nil {
		return nil
	}

	data := m.Current()
	if err := m.updater.UpdateStatusComplex(data); err != nil {
		m.logger.Warn("Failed to update presence", logging.Error(err))
		return err
	}
	return nil
}

// Current builds the presence for the last seen snapshot
func (m *Manager) Current() discordgo.UpdateStatusData {
	m.mu.RLock()
	s := m.snapshot
	resolve := m.channels
	m.mu.RUnlock()

	if s.State != reactor.Armed {
		return discordgo.UpdateStatusData{
			Status: "online",
			Activities: []*discordgo.Activity{
				{
					Name: "for /react_now",
					Type: discordgo.ActivityTypeWatching,
				},
			},
		}
	}

	channel := s.ChannelID
	if resolve != nil {
		if name := resolve(s.ChannelID); name != "" {
			channel = name
		}
	}

	return discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name:  "#" + channel,
				Type:  discordgo.ActivityTypeWatching,
				State: "reacting with " + s.Set.String(),
			},
		},
	}
}
