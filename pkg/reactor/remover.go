package reactor

import (
	"context"
	"fmt"

	"github.com/latoulicious/Reactor/pkg/logging"
)

// RemoveOutcome summarises an undo or a bulk remove.
type RemoveOutcome struct {
	Messages int
	Removed  int
	Failed   int
}

// Remover takes the bot's own reactions back off messages.
type Remover struct {
	platform Platform
	logger   logging.Logger
}

// NewRemover creates a remover over the given platform
func NewRemover(platform Platform, logger logging.Logger) *Remover {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Remover{
		platform: platform,
		logger:   logger.With(logging.String("component", "remover")),
	}
}

// Undo removes exactly the recorded tokens from each entry's message, in
// recorded order. Failures are counted and do not stop the rest.
func (r *Remover) Undo(ctx context.Context, entries []HistoryEntry) RemoveOutcome {
	var outcome RemoveOutcome
	for _, entry := range entries {
		outcome.Messages++
		for _, token := range entry.Applied {
			if err := r.platform.RemoveOwnReaction(ctx, entry.Message, token); err != nil {
				outcome.Failed++
				r.logger.Warn("Failed to remove reaction",
					logging.String("emoji", token.String()),
					logging.String("message_id", entry.Message.ID),
					logging.Error(err))
				continue
			}
			outcome.Removed++
		}
	}
	return outcome
}

// SweepOwn removes every reaction the bot placed on the window most recent
// messages of channelID, oldest message first.
func (r *Remover) SweepOwn(ctx context.Context, channelID string, window int) (RemoveOutcome, error) {
	msgs, err := r.platform.RecentMessages(ctx, channelID, ClampWindow(window))
	if err != nil {
		return RemoveOutcome{}, fmt.Errorf("failed to fetch recent messages: %w", err)
	}

	var outcome RemoveOutcome
	for _, msg := range Chronological(msgs) {
		outcome.Messages++
		for _, reaction := range msg.Reactions {
			if !reaction.Me {
				continue
			}
			if err := r.platform.RemoveOwnReaction(ctx, msg.Ref, reaction.Emoji); err != nil {
				outcome.Failed++
				r.logger.Warn("Failed to remove own reaction",
					logging.String("emoji", reaction.Emoji.String()),
					logging.String("message_id", msg.Ref.ID),
					logging.Error(err))
				continue
			}
			outcome.Removed++
		}
	}

	return outcome, nil
}
