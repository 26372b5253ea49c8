package reactor

import (
	"context"

	"github.com/latoulicious/Reactor/pkg/logging"
)

// Applier adds a reaction set to one message.
type Applier struct {
	platform Platform
	logger   logging.Logger
}

// NewApplier creates an applier over the given platform
func NewApplier(platform Platform, logger logging.Logger) *Applier {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Applier{
		platform: platform,
		logger:   logger.With(logging.String("component", "applier")),
	}
}

// Apply adds each token in order and stops at the first failure. It returns
// the successful prefix; already-applied reactions are not rolled back.
func (a *Applier) Apply(ctx context.Context, msg MessageRef, set ReactionSet) (ReactionSet, error) {
	applied := make(ReactionSet, 0, len(set))

	for _, token := range set {
		a.logger.Debug("Reacting",
			logging.String("emoji", token.String()),
			logging.String("guild_id", msg.GuildID),
			logging.String("channel_id", msg.ChannelID),
			logging.String("message_id", msg.ID),
			logging.String("author_id", msg.AuthorID))

		if err := a.platform.AddReaction(ctx, msg, token); err != nil {
			a.logger.Warn("Failed to add reaction",
				logging.String("emoji", token.String()),
				logging.String("message_id", msg.ID),
				logging.Int("applied", len(applied)),
				logging.Error(err))
			return applied, &ApplyError{Message: msg, Token: token, Applied: len(applied), Err: err}
		}
		applied = append(applied, token)
	}

	return applied, nil
}
