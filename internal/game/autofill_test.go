package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoFillSkipped(t *testing.T) {
	t.Parallel()

	t.Run("preflop skipped players fold", func(t *testing.T) {
		h := newTestHand(4)
		filled := h.AutoFillSkipped(h.Player(3))

		require.Len(t, filled, 2)
		for i, a := range filled {
			assert.Equal(t, Fold, a.Type)
			assert.True(t, a.AutoFilled)
			assert.Equal(t, 0, a.Amount)
			assert.Equal(t, i+1, a.Sequence)
		}
		assert.Equal(t, []int64{1, 2}, []int64{filled[0].PlayerID, filled[1].PlayerID})
		assert.Equal(t, 2, h.Log.Len())
	})

	t.Run("postflop skipped players check", func(t *testing.T) {
		h := newTestHand(3)
		record(t, h, 1, Call, 2)
		record(t, h, 2, Check, 0)
		record(t, h, 3, Call, 2)
		h.Street = Flop

		filled := h.AutoFillSkipped(h.Player(2))
		require.Len(t, filled, 1)
		assert.Equal(t, Action{PlayerID: 1, Type: Check, Street: Flop, Sequence: 4, AutoFilled: true}, filled[0])
	})

	t.Run("postflop skipped players fold after a raise", func(t *testing.T) {
		h := newTestHand(4)
		h.Street = Flop
		record(t, h, 2, Raise, 10)

		filled := h.AutoFillSkipped(h.Player(3))
		require.Len(t, filled, 1)
		assert.Equal(t, int64(1), filled[0].PlayerID)
		assert.Equal(t, Fold, filled[0].Type)
	})

	t.Run("players who already acted are left alone", func(t *testing.T) {
		h := newTestHand(4)
		record(t, h, 2, Call, 2)

		filled := h.AutoFillSkipped(h.Player(4))
		assert.Equal(t, []int64{1, 3}, []int64{filled[0].PlayerID, filled[1].PlayerID})
	})

	t.Run("first in order fills nothing", func(t *testing.T) {
		h := newTestHand(3)
		assert.Empty(t, h.AutoFillSkipped(h.Player(1)))
		assert.Equal(t, 0, h.Log.Len())
	})

	t.Run("ineligible players are never filled", func(t *testing.T) {
		h := newTestHand(4)
		h.Players[1].InitialStack = 2
		record(t, h, 1, Fold, 0)
		record(t, h, 2, Call, 2)
		h.Street = Flop

		// Player 1 folded and player 2 is all-in, so nobody sits before 3.
		assert.Empty(t, h.AutoFillSkipped(h.Player(3)))
	})

	t.Run("player outside the order is a no-op", func(t *testing.T) {
		h := newTestHand(3)
		record(t, h, 3, Fold, 0)
		assert.Empty(t, h.AutoFillSkipped(h.Player(3)))
		assert.Empty(t, h.AutoFillSkipped(&Player{ID: 99}))
	})

	t.Run("follows positional order", func(t *testing.T) {
		h := newTestHand(4)
		h.Order = PositionalOrder
		h.Button, h.SmallBlind, h.BigBlind = 3, 0, 1

		filled := h.AutoFillSkipped(h.Player(1))
		require.Len(t, filled, 2)
		assert.Equal(t, []int64{3, 4}, []int64{filled[0].PlayerID, filled[1].PlayerID})
	})
}

func TestAutoFillUndoRoundTrip(t *testing.T) {
	t.Parallel()

	h := newTestHand(6)
	record(t, h, 1, Call, 2)
	h.Street = Flop
	record(t, h, 2, Raise, 6)

	before := h.Log.Actions()

	h.AutoFillSkipped(h.Player(5))
	record(t, h, 5, Call, 6)
	require.Greater(t, h.Log.Len(), len(before)+1)

	h.UndoLast()
	assert.Equal(t, before, h.Log.Actions())
}
