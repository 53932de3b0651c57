package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		setup  func(t *testing.T, h *Hand)
		player int64
		want   []ActionType
	}{
		{
			name:   "facing the big blind",
			setup:  func(t *testing.T, h *Hand) {},
			player: 1,
			want:   []ActionType{Fold, Call, Raise},
		},
		{
			name: "folded player has nothing",
			setup: func(t *testing.T, h *Hand) {
				record(t, h, 1, Fold, 0)
			},
			player: 1,
			want:   []ActionType{},
		},
		{
			name: "all-in player has nothing",
			setup: func(t *testing.T, h *Hand) {
				record(t, h, 1, Raise, 100)
			},
			player: 1,
			want:   []ActionType{},
		},
		{
			name: "matched the current bet can check or raise",
			setup: func(t *testing.T, h *Hand) {
				record(t, h, 1, Call, 2)
			},
			player: 1,
			want:   []ActionType{Check, Raise},
		},
		{
			name: "postflop with no bets",
			setup: func(t *testing.T, h *Hand) {
				h.Street = Flop
			},
			player: 2,
			want:   []ActionType{Check, Raise},
		},
		{
			name: "short stack can call all-in but not raise",
			setup: func(t *testing.T, h *Hand) {
				h.Players[1].InitialStack = 10
				record(t, h, 1, Raise, 20)
			},
			player: 2,
			want:   []ActionType{Fold, Call},
		},
		{
			name: "stack exactly covering the call cannot raise",
			setup: func(t *testing.T, h *Hand) {
				h.Players[1].InitialStack = 20
				record(t, h, 1, Raise, 20)
			},
			player: 2,
			want:   []ActionType{Fold, Call},
		},
		{
			name: "earlier streets reduce the remaining stack",
			setup: func(t *testing.T, h *Hand) {
				record(t, h, 1, Call, 2)
				record(t, h, 2, Raise, 90)
				record(t, h, 1, Call, 90)
				h.Street = Flop
				record(t, h, 2, Raise, 10)
			},
			player: 1,
			want:   []ActionType{Fold, Call},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestHand(3)
			tt.setup(t, h)
			assert.Equal(t, tt.want, h.AvailableActions(h.Player(tt.player)))
		})
	}
}

func TestAvailableActionsProperties(t *testing.T) {
	t.Parallel()

	// Every seat of every prefix of a short hand obeys the shape rules.
	h := newTestHand(4)
	h.Players[3].InitialStack = 30
	steps := []struct {
		player int64
		typ    ActionType
		amount int
	}{
		{1, Call, 2},
		{2, Raise, 10},
		{3, Fold, 0},
		{4, Raise, 30},
		{1, Call, 30},
		{2, Call, 30},
	}

	check := func() {
		for i := range h.Players {
			p := &h.Players[i]
			got := h.AvailableActions(p)
			if h.HasFolded(p) || h.IsAllIn(p) {
				assert.Empty(t, got, "player %d", p.ID)
				continue
			}
			w := h.Wager(p)
			require.NotEmpty(t, got)
			if w.ToCall <= 0 {
				assert.Equal(t, Check, got[0])
				assert.Equal(t, w.Remaining > 0, len(got) == 2)
			} else {
				assert.Equal(t, Fold, got[0])
				assert.Equal(t, w.Remaining > 0, h.CanTake(p, Call))
				assert.Equal(t, w.Remaining > w.ToCall, h.CanTake(p, Raise))
			}
		}
	}

	check()
	for _, s := range steps {
		record(t, h, s.player, s.typ, s.amount)
		check()
	}
}

func TestWager(t *testing.T) {
	t.Parallel()

	t.Run("default opening bet is the big blind", func(t *testing.T) {
		h := newTestHand(3)
		w := h.Wager(h.Player(1))
		assert.Equal(t, Wager{CurrentBet: 2, ToCall: 2, Remaining: 100, CallAmount: 2}, w)
	})

	t.Run("straddle replaces the big blind", func(t *testing.T) {
		h := newTestHand(3)
		h.Straddle = &StraddleConfig{Amount: 4, Seat: 2}
		w := h.Wager(h.Player(1))
		assert.Equal(t, 4, w.CurrentBet)
		assert.Equal(t, 4, w.ToCall)
	})

	t.Run("no default bet after preflop", func(t *testing.T) {
		h := newTestHand(3)
		h.Straddle = &StraddleConfig{Amount: 4, Seat: 2}
		h.Street = Turn
		assert.Equal(t, 0, h.Wager(h.Player(1)).CurrentBet)
	})

	t.Run("call amount is capped at the stack", func(t *testing.T) {
		h := newTestHand(3)
		h.Players[1].InitialStack = 15
		record(t, h, 1, Raise, 40)
		w := h.Wager(h.Player(2))
		assert.Equal(t, 40, w.ToCall)
		assert.Equal(t, 15, w.Remaining)
		assert.Equal(t, 15, w.CallAmount)
	})

	t.Run("bet and straddle actions carry no contribution", func(t *testing.T) {
		h := newTestHand(3)
		record(t, h, 1, Straddle, 4)
		w := h.Wager(h.Player(1))
		assert.Equal(t, 0, w.Contribution)
		assert.Equal(t, 100, w.Remaining)
	})
}

func TestMinimumRaise(t *testing.T) {
	t.Parallel()

	h := newTestHand(3)
	assert.Equal(t, 2, h.MinimumRaise(h.Player(1)), "no raises preflop")

	record(t, h, 1, Raise, 8)
	assert.Equal(t, 16, h.MinimumRaise(h.Player(2)), "one raise")

	record(t, h, 2, Raise, 20)
	assert.Equal(t, 32, h.MinimumRaise(h.Player(3)), "last raise plus its increment")

	h.Street = Flop
	assert.Equal(t, 0, h.MinimumRaise(h.Player(1)), "no raises postflop")
}
