package reactor

// State is the live session's state.
type State int

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	default:
		return "unknown"
	}
}

// Session binds at most one channel to a reaction set. The zero value is Idle.
type Session struct {
	channelID string
	set       ReactionSet
}

// Snapshot is a read-only copy of the session.
type Snapshot struct {
	State     State
	ChannelID string
	Set       ReactionSet
}

// Effect is a reaction the caller should apply.
type Effect struct {
	Message MessageRef
	Set     ReactionSet
}

// Start arms the session, replacing any previous binding.
func (s *Session) Start(channelID string, set ReactionSet) error {
	if len(set) == 0 {
		return ErrNoValidEmoji
	}
	if channelID == "" {
		return ErrNoChannel
	}
	s.channelID = channelID
	s.set = append(ReactionSet(nil), set...)
	return nil
}

// Stop disarms the session. It reports whether the session was armed.
func (s *Session) Stop() bool {
	wasArmed := s.Armed()
	s.channelID = ""
	s.set = nil
	return wasArmed
}

// Armed reports whether a channel is bound.
func (s *Session) Armed() bool {
	return s.channelID != ""
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	if !s.Armed() {
		return Snapshot{State: Idle}
	}
	return Snapshot{
		State:     Armed,
		ChannelID: s.channelID,
		Set:       append(ReactionSet(nil), s.set...),
	}
}

// OnMessage decides whether msg should be reacted to. It has no side effects;
// the session is unchanged either way.
func (s *Session) OnMessage(msg MessageRef, botUserID string) (Effect, bool) {
	if !s.Armed() || msg.ChannelID != s.channelID {
		return Effect{}, false
	}
	if msg.AuthorID == botUserID {
		return Effect{}, false
	}
	return Effect{Message: msg, Set: append(ReactionSet(nil), s.set...)}, true
}
