package game

import "testing"

// newTestHand seats players 0..n-1 with ids 1..n, 100 chips each, at 1/2.
// Seat 0 is the small blind, seat 1 the big blind, the last seat the button.
func newTestHand(n int) *Hand {
	h := &Hand{
		Stakes:     Stakes{Small: 1, Big: 2},
		Street:     Preflop,
		Button:     n - 1,
		SmallBlind: 0,
		BigBlind:   1,
	}
	for i := 0; i < n; i++ {
		h.Players = append(h.Players, Player{
			ID:           int64(i + 1),
			Seat:         i,
			InitialStack: 100,
		})
	}
	return h
}

// record appends a real action for playerID on the hand's current street.
func record(t *testing.T, h *Hand, playerID int64, typ ActionType, amount int) {
	t.Helper()
	err := h.Log.Append(Action{
		PlayerID: playerID,
		Type:     typ,
		Amount:   amount,
		Street:   h.Street,
		Sequence: h.Log.NextSequence(),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

// autoRecord appends an auto-filled action, as AutoFillSkipped would.
func autoRecord(t *testing.T, h *Hand, playerID int64, typ ActionType) {
	t.Helper()
	err := h.Log.Append(Action{
		PlayerID:   playerID,
		Type:       typ,
		Street:     h.Street,
		Sequence:   h.Log.NextSequence(),
		AutoFilled: true,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func ids(players []Player) []int64 {
	out := make([]int64, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}
