package reactor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageIDs(msgs []*Message) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.Ref.ID
	}
	return ids
}

func callIDs(calls []platformCall) []string {
	ids := make([]string, len(calls))
	for i, c := range calls {
		ids[i] = c.MessageID
	}
	return ids
}

func newTestScanner(p *fakePlatform) (*Scanner, *History) {
	history := NewHistory(DefaultHistoryLimit)
	return NewScanner(p, NewApplier(p, nil), history, nil), history
}

func TestBoundedRange(t *testing.T) {
	build := func(specs ...[]Reaction) []*Message {
		msgs := make([]*Message, len(specs))
		for i, r := range specs {
			msgs[i] = &Message{Ref: MessageRef{ID: string(rune('a' + i))}, Reactions: r}
		}
		return msgs
	}
	up := []Reaction{marker(MarkerOpen)}
	down := []Reaction{marker(MarkerClose)}
	both := []Reaction{marker(MarkerOpen), marker(MarkerClose)}

	tests := []struct {
		name     string
		msgs     []*Message
		expected []string
	}{
		{"inclusive range", build(nil, up, nil, nil, down, nil), []string{"b", "c", "d", "e"}},
		{"close without open", build(nil, down, nil), nil},
		{"open without close", build(up, nil, nil), nil},
		{"no markers", build(nil, nil), nil},
		{"reopen moves start", build(up, nil, up, nil, down), []string{"c", "d", "e"}},
		{"first close wins", build(up, down, up, nil, down), []string{"a", "b"}},
		{"close before open ignored", build(down, up, nil, down), []string{"b", "c", "d"}},
		{"both markers close open range", build(up, nil, both, nil, down), []string{"a", "b", "c"}},
		{"both markers alone", build(nil, both, nil), []string{"b"}},
		{"open and close on adjacent", build(up, down), []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoundedRange(tt.msgs)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.expected, messageIDs(got))
		})
	}
}

func TestBoundedRange_MarkerWithoutVariationSelector(t *testing.T) {
	msgs := []*Message{
		{Ref: MessageRef{ID: "a"}, Reactions: []Reaction{marker("⬆")}},
		{Ref: MessageRef{ID: "b"}, Reactions: []Reaction{marker("⬇")}},
	}

	assert.Equal(t, []string{"a", "b"}, messageIDs(BoundedRange(msgs)))
}

func TestScanner_ScanAndApply_Example(t *testing.T) {
	p := newFakePlatform()
	p.addMessage("ch", "m1")
	p.addMessage("ch", "m2", marker(MarkerOpen))
	p.addMessage("ch", "m3")
	p.addMessage("ch", "m4")
	p.addMessage("ch", "m5", marker(MarkerClose))
	p.addMessage("ch", "m6")

	scanner, history := newTestScanner(p)
	outcome, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"👍"}, 32)

	require.NoError(t, err)
	assert.True(t, outcome.BoundsFound)
	assert.Equal(t, 4, outcome.Applied)
	assert.Equal(t, 4, outcome.Messages)
	assert.Zero(t, outcome.Failed)
	assert.Equal(t, []string{"m2", "m3", "m4", "m5"}, callIDs(p.callsOf("add")))
	assert.Equal(t, 4, history.Len())
}

func TestScanner_ScanAndApply_NoBounds(t *testing.T) {
	p := newFakePlatform()
	p.addMessage("ch", "m1")
	p.addMessage("ch", "m2", marker(MarkerClose))
	p.addMessage("ch", "m3")

	scanner, history := newTestScanner(p)
	history.Record(HistoryEntry{Message: MessageRef{ID: "old"}, Applied: ReactionSet{"🔥"}})

	outcome, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"👍"}, 32)

	assert.ErrorIs(t, err, ErrBoundsNotFound)
	assert.False(t, outcome.BoundsFound)
	assert.Zero(t, outcome.Applied)
	assert.Empty(t, p.callsOf("add"))
	assert.Equal(t, 1, history.Len(), "history untouched when no bounds are found")
}

func TestScanner_ScanAndApply_WindowLimitsSearch(t *testing.T) {
	p := newFakePlatform()
	p.addMessage("ch", "m1", marker(MarkerOpen))
	p.addMessage("ch", "m2")
	p.addMessage("ch", "m3", marker(MarkerClose))

	scanner, _ := newTestScanner(p)
	_, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"👍"}, 2)

	assert.ErrorIs(t, err, ErrBoundsNotFound)
}

func TestScanner_ScanAndApply_TokenOrderAndPartialFailure(t *testing.T) {
	p := newFakePlatform()
	p.addMessage("ch", "m1", marker(MarkerOpen))
	p.addMessage("ch", "m2")
	p.addMessage("ch", "m3", marker(MarkerClose))
	p.failAdd["m2"] = "💀"

	scanner, history := newTestScanner(p)
	outcome, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"🔥", "💀", "🎉"}, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Failed)
	assert.Equal(t, 7, outcome.Applied)

	adds := p.callsOf("add")
	expected := []platformCall{
		{"add", "m1", "🔥"}, {"add", "m1", "💀"}, {"add", "m1", "🎉"},
		{"add", "m2", "🔥"},
		{"add", "m3", "🔥"}, {"add", "m3", "💀"}, {"add", "m3", "🎉"},
	}
	assert.Equal(t, expected, adds)

	entries := history.Drain()
	require.Len(t, entries, 3)
	assert.Equal(t, ReactionSet{"🔥"}, entries[1].Applied)
}

func TestScanner_ScanAndApply_ResetsHistory(t *testing.T) {
	p := newFakePlatform()
	p.addMessage("ch", "m1", marker(MarkerOpen), marker(MarkerClose))

	scanner, history := newTestScanner(p)
	history.Record(HistoryEntry{Message: MessageRef{ID: "old"}, Applied: ReactionSet{"🔥"}})

	_, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"👍"}, 10)
	require.NoError(t, err)

	entries := history.Drain()
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].Message.ID)
}

func TestScanner_ScanAndApply_FailedScanKeepsHistory(t *testing.T) {
	p := newFakePlatform()
	p.addMessage("ch", "m1", marker(MarkerOpen))
	p.addMessage("ch", "m2", marker(MarkerClose))
	p.failAdd["m1"] = "👍"
	p.failAdd["m2"] = "👍"

	scanner, history := newTestScanner(p)
	history.Record(HistoryEntry{Message: MessageRef{ID: "old"}, Applied: ReactionSet{"🔥"}})

	outcome, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"👍"}, 10)

	require.NoError(t, err)
	assert.True(t, outcome.BoundsFound)
	assert.Equal(t, 2, outcome.Failed)
	assert.Zero(t, outcome.Applied)

	entries := history.Drain()
	require.Len(t, entries, 1, "nothing applied, earlier entries stay undoable")
	assert.Equal(t, "old", entries[0].Message.ID)
}

func TestScanner_ScanAndApply_ResetsOnFirstApply(t *testing.T) {
	p := newFakePlatform()
	p.addMessage("ch", "m1", marker(MarkerOpen))
	p.addMessage("ch", "m2", marker(MarkerClose))
	p.failAdd["m1"] = "👍"

	scanner, history := newTestScanner(p)
	history.Record(HistoryEntry{Message: MessageRef{ID: "old"}, Applied: ReactionSet{"🔥"}})

	_, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"👍"}, 10)
	require.NoError(t, err)

	entries := history.Drain()
	require.Len(t, entries, 1)
	assert.Equal(t, "m2", entries[0].Message.ID)
}

func TestScanner_ScanAndApply_RejectsEmptySet(t *testing.T) {
	p := newFakePlatform()
	scanner, _ := newTestScanner(p)

	_, err := scanner.ScanAndApply(context.Background(), "ch", nil, 10)

	assert.ErrorIs(t, err, ErrNoValidEmoji)
}

func TestScanner_ScanAndApply_FetchError(t *testing.T) {
	p := newFakePlatform()
	p.fetchErr = errors.New("gateway down")
	scanner, _ := newTestScanner(p)

	_, err := scanner.ScanAndApply(context.Background(), "ch", ReactionSet{"👍"}, 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway down")
}

func TestClampWindow(t *testing.T) {
	assert.Equal(t, 1, ClampWindow(-5))
	assert.Equal(t, 1, ClampWindow(0))
	assert.Equal(t, 32, ClampWindow(32))
	assert.Equal(t, 100, ClampWindow(100))
	assert.Equal(t, 100, ClampWindow(1000))
}
