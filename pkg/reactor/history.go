package reactor

// DefaultHistoryLimit matches the largest scan window.
const DefaultHistoryLimit = MaxWindow

// HistoryEntry is one message and the reactions the bot put on it.
type HistoryEntry struct {
	Message MessageRef
	Applied ReactionSet
}

// History is the log of applied reactions consumed by undo. It is owned by
// the engine and never persisted.
type History struct {
	entries []HistoryEntry
	limit   int
}

// NewHistory creates an empty history holding at most limit entries.
// A limit below one means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Record appends an entry, evicting the oldest one when full. Entries without
// applied tokens are dropped.
func (h *History) Record(entry HistoryEntry) {
	if len(entry.Applied) == 0 {
		return
	}
	entry.Applied = append(ReactionSet(nil), entry.Applied...)
	h.entries = append(h.entries, entry)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]HistoryEntry(nil), h.entries[len(h.entries)-h.limit:]...)
	}
}

// Drain returns all entries in recorded order and empties the history.
func (h *History) Drain() []HistoryEntry {
	entries := h.entries
	h.entries = nil
	return entries
}

// Reset discards all entries.
func (h *History) Reset() {
	h.entries = nil
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}
