// Package reactor implements the auto-reaction engine: a live session that
// reacts to every new message in one channel, a scanner that reacts to a
// marker-delimited range of past messages, and undo over the reactions it
// applied.
package reactor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/Reactor/pkg/emoji"
	"github.com/latoulicious/Reactor/pkg/logging"
)

// Operator-facing status lines.
const (
	StatusNoValidEmoji  = "You must provide at least one valid emoji"
	StatusBoundsMissing = "Bounds not found. Please ensure at least one message is bounded by ⬆️ and ⬇️ reactions (pointing inwards)."
	StatusNothingToUndo = "Nothing to undo."
	StatusStopped       = "Stopped reacting."
	StatusNotReacting   = "Not currently reacting to any channel."
)

// RemovingStatus is shown while a bulk remove is in progress.
func RemovingStatus(window int) string {
	return fmt.Sprintf("Removing this bot's reactions from the %s...", mostRecent(ClampWindow(window)))
}

// Result is what a command returns to the operator.
type Result struct {
	Status     string
	Extraction emoji.Extraction
	Scan       *ScanOutcome
	Removal    *RemoveOutcome
	Err        error
}

// Engine owns the single Session and History of the process. All operations
// and inbound messages are serialised on one lock, since the gateway client
// delivers events concurrently.
type Engine struct {
	mu sync.Mutex

	platform  Platform
	extractor *emoji.Extractor
	session   Session
	history   *History
	applier   *Applier
	scanner   *Scanner
	remover   *Remover

	observers []Observer
	listeners []StateListener
	logger    logging.Logger

	historyLimit int
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHistoryLimit caps the number of history entries kept for undo.
func WithHistoryLimit(limit int) Option {
	return func(e *Engine) {
		e.historyLimit = limit
	}
}

// WithObservers registers activity observers.
func WithObservers(observers ...Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, observers...)
	}
}

// WithStateListener registers a listener for session changes.
func WithStateListener(listener StateListener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, listener)
	}
}

// WithExtractor replaces the default emoji extractor.
func WithExtractor(extractor *emoji.Extractor) Option {
	return func(e *Engine) {
		e.extractor = extractor
	}
}

// NewEngine creates the engine. Only one should exist per process.
func NewEngine(platform Platform, registry emoji.Registry, opts ...Option) *Engine {
	e := &Engine{
		platform:     platform,
		logger:       logging.NullLogger(),
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NullLogger()
	}
	if e.extractor == nil {
		e.extractor = emoji.NewExtractor(registry)
	}

	e.history = NewHistory(e.historyLimit)
	e.applier = NewApplier(platform, e.logger)
	e.scanner = NewScanner(platform, e.applier, e.history, e.logger)
	e.remover = NewRemover(platform, e.logger)
	e.logger = e.logger.With(logging.String("component", "engine"))
	return e
}

// StartLive arms the session on the invoking channel with the emoji named in
// emojiText. Re-arming replaces the previous channel and set. History is reset.
func (e *Engine) StartLive(ctx context.Context, inv Invocation, emojiText string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	ext := e.extractor.Extract(ctx, inv.GuildID, emojiText)
	if ext.Empty() {
		return e.finish(ctx, OpStartLive, inv, Result{
			Status:     withMissing(StatusNoValidEmoji, ext.Missing),
			Extraction: ext,
			Err:        ErrNoValidEmoji,
		}, Activity{})
	}

	if err := e.session.Start(inv.ChannelID, ReactionSet(ext.Tokens)); err != nil {
		return e.finish(ctx, OpStartLive, inv, Result{Status: "Cannot react here: " + err.Error(), Extraction: ext, Err: err}, Activity{})
	}
	e.history.Reset()
	e.notify()

	e.logger.Info("Live session armed",
		logging.String("channel_id", inv.ChannelID),
		logging.String("emoji", emoji.Render(ext.Tokens)),
		logging.Int("missing", len(ext.Missing)))

	status := fmt.Sprintf("Reacting with %s to every new message in this channel", emoji.Render(ext.Tokens))
	return e.finish(ctx, OpStartLive, inv, Result{Status: withMissing(status, ext.Missing), Extraction: ext}, Activity{})
}

// StopLive disarms the session. History is kept so undo still works.
func (e *Engine) StopLive(ctx context.Context, inv Invocation) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.Stop() {
		return e.finish(ctx, OpStopLive, inv, Result{Status: StatusNotReacting}, Activity{})
	}
	e.notify()

	e.logger.Info("Live session disarmed", logging.String("channel_id", inv.ChannelID))
	return e.finish(ctx, OpStopLive, inv, Result{Status: StatusStopped}, Activity{})
}

// ScanPast reacts to the bounded range found in the window most recent
// messages of the invoking channel.
func (e *Engine) ScanPast(ctx context.Context, inv Invocation, emojiText string, window int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	ext := e.extractor.Extract(ctx, inv.GuildID, emojiText)
	if ext.Empty() {
		return e.finish(ctx, OpScanPast, inv, Result{
			Status:     withMissing(StatusNoValidEmoji, ext.Missing),
			Extraction: ext,
			Err:        ErrNoValidEmoji,
		}, Activity{})
	}

	outcome, err := e.scanner.ScanAndApply(ctx, inv.ChannelID, ReactionSet(ext.Tokens), window)
	switch {
	case errors.Is(err, ErrBoundsNotFound):
		return e.finish(ctx, OpScanPast, inv, Result{Status: StatusBoundsMissing, Extraction: ext, Scan: &outcome, Err: err}, Activity{})
	case err != nil:
		e.logger.Error("Scan failed", logging.String("channel_id", inv.ChannelID), logging.Error(err))
		return e.finish(ctx, OpScanPast, inv, Result{Status: "Failed to read recent messages.", Extraction: ext, Err: err}, Activity{})
	}

	status := fmt.Sprintf("Reacted with %s to %s (%s)", emoji.Render(ext.Tokens), count(outcome.Messages, "message"), count(outcome.Applied, "reaction"))
	if outcome.Failed > 0 {
		status += fmt.Sprintf(", %s could not be fully reacted to", count(outcome.Failed, "message"))
	}
	return e.finish(ctx, OpScanPast, inv, Result{
		Status:     withMissing(status, ext.Missing),
		Extraction: ext,
		Scan:       &outcome,
	}, Activity{Applied: outcome.Applied, Failed: outcome.Failed})
}

// Undo removes every reaction recorded in History and empties it.
func (e *Engine) Undo(ctx context.Context, inv Invocation) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.history.Drain()
	if len(entries) == 0 {
		return e.finish(ctx, OpUndo, inv, Result{Status: StatusNothingToUndo}, Activity{})
	}

	outcome := e.remover.Undo(ctx, entries)
	status := fmt.Sprintf("Removed %s from %s", count(outcome.Removed, "reaction"), count(outcome.Messages, "message"))
	if outcome.Failed > 0 {
		status += fmt.Sprintf(" (%d could not be removed)", outcome.Failed)
	}
	return e.finish(ctx, OpUndo, inv, Result{Status: status, Removal: &outcome},
		Activity{Removed: outcome.Removed, Failed: outcome.Failed})
}

// BulkRemove strips the bot's own reactions from the window most recent
// messages of the invoking channel. It does not touch History or the session.
func (e *Engine) BulkRemove(ctx context.Context, inv Invocation, window int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	window = ClampWindow(window)
	outcome, err := e.remover.SweepOwn(ctx, inv.ChannelID, window)
	if err != nil {
		e.logger.Error("Bulk remove failed", logging.String("channel_id", inv.ChannelID), logging.Error(err))
		return e.finish(ctx, OpBulkRemove, inv, Result{Status: "Failed to read recent messages.", Err: err}, Activity{})
	}

	status := fmt.Sprintf("Removed reactions from the %s!", mostRecent(window))
	if outcome.Failed > 0 {
		status += fmt.Sprintf(" (%d could not be removed)", outcome.Failed)
	}
	return e.finish(ctx, OpBulkRemove, inv, Result{Status: status, Removal: &outcome},
		Activity{Removed: outcome.Removed, Failed: outcome.Failed})
}

// HandleMessage reacts to an inbound message when it lands in the armed channel.
func (e *Engine) HandleMessage(ctx context.Context, msg MessageRef) {
	e.mu.Lock()
	defer e.mu.Unlock()

	effect, ok := e.session.OnMessage(msg, e.platform.BotUserID())
	if !ok {
		return
	}

	applied, err := e.applier.Apply(ctx, effect.Message, effect.Set)
	e.history.Record(HistoryEntry{Message: effect.Message, Applied: applied})

	activity := Activity{Applied: len(applied)}
	status := "ok"
	if err != nil {
		activity.Failed = 1
		status = err.Error()
	}
	activity.Status = status
	e.observe(ctx, OpLive, Invocation{GuildID: msg.GuildID, ChannelID: msg.ChannelID, UserID: msg.AuthorID}, activity)
}

// Snapshot returns the current session state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Snapshot()
}

// HistoryLen returns the number of entries undo would act on.
func (e *Engine) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Len()
}

func (e *Engine) finish(ctx context.Context, op string, inv Invocation, res Result, activity Activity) Result {
	activity.Status = res.Status
	if res.Err != nil {
		e.logger.Debug("Command rejected",
			logging.String("operation", op),
			logging.String("channel_id", inv.ChannelID),
			logging.Error(res.Err))
	}
	e.observe(ctx, op, inv, activity)
	return res
}

func (e *Engine) observe(ctx context.Context, op string, inv Invocation, activity Activity) {
	if len(e.observers) == 0 {
		return
	}
	activity.ID = uuid.NewString()
	activity.Operation = op
	activity.GuildID = inv.GuildID
	activity.ChannelID = inv.ChannelID
	activity.UserID = inv.UserID
	activity.At = e.now()
	for _, o := range e.observers {
		o.Observe(ctx, activity)
	}
}

func (e *Engine) notify() {
	snapshot := e.session.Snapshot()
	for _, l := range e.listeners {
		l.SessionChanged(snapshot)
	}
}

// count renders n with word, pluralised with a trailing s.
func count(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func mostRecent(n int) string {
	if n == 1 {
		return "most recent message"
	}
	return fmt.Sprintf("%d most recent messages", n)
}

func withMissing(status string, missing []string) string {
	if len(missing) == 0 {
		return status
	}
	return strings.TrimSpace(status + " " + emoji.FormatMissing(missing))
}
