package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoLast(t *testing.T) {
	t.Parallel()

	t.Run("removes a real action and its auto-fills", func(t *testing.T) {
		h := newTestHand(3)
		autoRecord(t, h, 1, Fold)
		autoRecord(t, h, 2, Fold)
		record(t, h, 3, Call, 2)

		removed := h.UndoLast()
		assert.Equal(t, 0, h.Log.Len())
		require.Len(t, removed, 3)
		assert.Equal(t, []int{3, 2, 1}, []int{removed[0].Sequence, removed[1].Sequence, removed[2].Sequence})
	})

	t.Run("stops at the previous real action", func(t *testing.T) {
		h := newTestHand(4)
		record(t, h, 1, Call, 2)
		autoRecord(t, h, 2, Fold)
		record(t, h, 3, Raise, 8)

		h.UndoLast()
		require.Equal(t, 1, h.Log.Len())
		assert.Equal(t, int64(1), h.Log.At(0).PlayerID)

		h.UndoLast()
		assert.Equal(t, 0, h.Log.Len())
	})

	t.Run("only the last action when nothing was auto-filled", func(t *testing.T) {
		h := newTestHand(3)
		record(t, h, 1, Call, 2)
		record(t, h, 2, Check, 0)

		removed := h.UndoLast()
		require.Len(t, removed, 1)
		assert.Equal(t, Check, removed[0].Type)
		assert.Equal(t, 1, h.Log.Len())
	})

	t.Run("empty log", func(t *testing.T) {
		h := newTestHand(3)
		assert.Empty(t, h.UndoLast())
		assert.Equal(t, 0, h.Log.Len())
	})

	t.Run("next sequence reuses undone numbers", func(t *testing.T) {
		h := newTestHand(3)
		record(t, h, 1, Call, 2)
		record(t, h, 2, Raise, 6)
		h.UndoLast()
		assert.Equal(t, 2, h.Log.NextSequence())
	})
}

func TestUndoRestoresTurn(t *testing.T) {
	t.Parallel()

	h := newTestHand(4)
	record(t, h, 1, Call, 2)
	require.Equal(t, int64(2), h.NextToAct().ID)

	h.AutoFillSkipped(h.Player(4))
	record(t, h, 4, Raise, 10)
	assert.Nil(t, h.NextToAct())

	h.UndoLast()
	assert.Equal(t, int64(2), h.NextToAct().ID)
}
