package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLogAppend(t *testing.T) {
	t.Parallel()

	var l ActionLog
	assert.Equal(t, 1, l.NextSequence())

	require.NoError(t, l.Append(Action{Sequence: 1}, Action{Sequence: 3}))
	assert.Equal(t, 4, l.NextSequence())

	err := l.Append(Action{Sequence: 3})
	assert.Error(t, err)
	assert.Equal(t, 2, l.Len(), "rejected append leaves the log untouched")

	err = l.Append(Action{Sequence: 5}, Action{Sequence: 4})
	assert.Error(t, err)
	assert.Equal(t, 2, l.Len())
}

func TestActionLogActionsIsACopy(t *testing.T) {
	t.Parallel()

	l, err := NewActionLog(Action{Sequence: 1, Type: Call})
	require.NoError(t, err)

	view := l.Actions()
	view[0].Type = Fold
	assert.Equal(t, Call, l.At(0).Type)
}

func TestActionLogTruncate(t *testing.T) {
	t.Parallel()

	l, err := NewActionLog(Action{Sequence: 1}, Action{Sequence: 2}, Action{Sequence: 3})
	require.NoError(t, err)

	l.Truncate(5)
	assert.Equal(t, 3, l.Len())
	l.Truncate(1)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 2, l.NextSequence())
	l.Truncate(-1)
	assert.Equal(t, 0, l.Len())
}

func TestHandJSON(t *testing.T) {
	t.Parallel()

	h := newTestHand(2)
	h.Straddle = &StraddleConfig{Amount: 4, Seat: 1}
	record(t, h, 1, Raise, 6)
	autoRecord(t, h, 2, Fold)

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"street":"preflop"`)
	assert.Contains(t, string(data), `"type":"raise"`)

	var back Hand
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h.Log.Actions(), back.Log.Actions())
	assert.Equal(t, h.Straddle, back.Straddle)

	bad := []byte(`{"actions":[{"sequence":2},{"sequence":1}]}`)
	assert.Error(t, json.Unmarshal(bad, &back))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	h := newTestHand(3)
	record(t, h, 1, Call, 2)
	require.NoError(t, h.Validate())

	tests := []struct {
		name   string
		mutate func(h *Hand)
		want   error
	}{
		{"duplicate id", func(h *Hand) { h.Players[1].ID = 1 }, ErrDuplicatePlayer},
		{"duplicate seat", func(h *Hand) { h.Players[1].Seat = 0 }, ErrDuplicateSeat},
		{"two heroes", func(h *Hand) { h.Players[0].Hero, h.Players[1].Hero = true, true }, ErrMultipleHeroes},
		{"unknown player", func(h *Hand) { record(t, h, 42, Check, 0) }, ErrUnknownPlayer},
		{"negative stack", func(h *Hand) { h.Players[2].InitialStack = -1 }, ErrNegativeAmount},
		{"negative amount", func(h *Hand) { record(t, h, 2, Call, -2) }, ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestHand(3)
			record(t, c, 1, Call, 2)
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	var nilHand *Hand
	assert.Error(t, nilHand.Validate())
}

func TestStreetAndActionText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Flop, Preflop.Next())
	assert.Equal(t, River, River.Next())

	for in, want := range map[string]ActionType{"x": Check, "k": Check, "c": Call, "r": Raise, "f": Fold, "Raise": Raise, " fold ": Fold} {
		got, err := ParseActionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseActionType("shove")
	assert.Error(t, err)

	s, err := ParseStreet("Turn")
	require.NoError(t, err)
	assert.Equal(t, Turn, s)

	k, err := ParsePlayerKind("")
	require.NoError(t, err)
	assert.Equal(t, Unknown, k)
}
