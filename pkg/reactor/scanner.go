package reactor

import (
	"context"
	"fmt"

	"github.com/latoulicious/Reactor/pkg/logging"
)

// ScanOutcome describes one retroactive scan.
type ScanOutcome struct {
	BoundsFound bool
	// Messages is the size of the bounded range.
	Messages int
	// Applied counts reactions successfully added.
	Applied int
	// Failed counts messages whose set was cut short by an apply failure.
	Failed  int
	Entries []HistoryEntry
}

// Scanner finds a marker-delimited range in recent messages and reacts to it.
type Scanner struct {
	platform Platform
	applier  *Applier
	history  *History
	logger   logging.Logger
}

// NewScanner creates a scanner recording into history
func NewScanner(platform Platform, applier *Applier, history *History, logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Scanner{
		platform: platform,
		applier:  applier,
		history:  history,
		logger:   logger.With(logging.String("component", "scanner")),
	}
}

// ScanAndApply fetches the window most recent messages of channelID, finds
// the first bounded range walking oldest first and applies set to every
// message in it. History is reset just before the first successful apply, so
// a scan that adds nothing leaves earlier entries for undo. A failure on one
// message keeps its successful prefix and moves on to the next message.
func (s *Scanner) ScanAndApply(ctx context.Context, channelID string, set ReactionSet, window int) (ScanOutcome, error) {
	if len(set) == 0 {
		return ScanOutcome{}, ErrNoValidEmoji
	}

	window = ClampWindow(window)
	msgs, err := s.platform.RecentMessages(ctx, channelID, window)
	if err != nil {
		return ScanOutcome{}, fmt.Errorf("failed to fetch recent messages: %w", err)
	}

	target := BoundedRange(Chronological(msgs))
	if target == nil {
		s.logger.Info("No bounded range in window",
			logging.String("channel_id", channelID),
			logging.Int("window", window),
			logging.Int("fetched", len(msgs)))
		return ScanOutcome{}, ErrBoundsNotFound
	}

	outcome := ScanOutcome{BoundsFound: true, Messages: len(target)}
	reset := false

	for _, msg := range target {
		applied, err := s.applier.Apply(ctx, msg.Ref, set)
		if err != nil {
			outcome.Failed++
		}
		if len(applied) == 0 {
			continue
		}
		if !reset {
			s.history.Reset()
			reset = true
		}
		entry := HistoryEntry{Message: msg.Ref, Applied: applied}
		s.history.Record(entry)
		outcome.Entries = append(outcome.Entries, entry)
		outcome.Applied += len(applied)
	}

	s.logger.Info("Applied reactions to bounded range",
		logging.String("channel_id", channelID),
		logging.Int("messages", outcome.Messages),
		logging.Int("applied", outcome.Applied),
		logging.Int("failed", outcome.Failed))

	return outcome, nil
}

// Chronological returns a copy of newest-first messages in oldest-first order.
func Chronological(newestFirst []*Message) []*Message {
	out := make([]*Message, len(newestFirst))
	for i, m := range newestFirst {
		out[len(newestFirst)-1-i] = m
	}
	return out
}

// BoundedRange returns the first range opened by MarkerOpen and closed by
// MarkerClose, both ends inclusive, walking msgs in order. A later open
// moves the start forward. A message carrying both markers closes an open
// range, or forms a range of its own when none is open. It returns nil when
// no range closes.
func BoundedRange(msgs []*Message) []*Message {
	start := -1
	for i, m := range msgs {
		opens, closes := m.Has(MarkerOpen), m.Has(MarkerClose)
		if closes {
			if start >= 0 {
				return msgs[start : i+1]
			}
			if opens {
				return msgs[i : i+1]
			}
			continue
		}
		if opens {
			start = i
		}
	}
	return nil
}
