package game

import "sort"

// ActionOrder returns the players still able to act (not folded, not
// all-in) in the order they act on the given street. It is the single
// source of ordering for both NextToAct and AutoFillSkipped.
//
// Under SeatOrder the ring is ascending seat index on every street. Under
// PositionalOrder the same ring is rotated to start at the first seat after
// the straddle (or big blind) preflop, and after the button on later
// streets.
func (h *Hand) ActionOrder(street Street) []Player {
	if h == nil || len(h.Players) == 0 {
		return nil
	}

	order := make([]Player, 0, len(h.Players))
	for i := range h.Players {
		if h.IsEligible(&h.Players[i]) {
			order = append(order, h.Players[i])
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Seat < order[j].Seat
	})

	if h.Order != PositionalOrder || len(order) < 2 {
		return order
	}

	anchor := h.Button
	if street == Preflop {
		anchor = h.BigBlind
		if h.Straddle != nil && h.Straddle.Amount > 0 {
			anchor = h.Straddle.Seat
		}
	}

	// First seat strictly after the anchor, wrapping to the lowest seat.
	start := 0
	for i, p := range order {
		if p.Seat > anchor {
			start = i
			break
		}
	}
	rotated := make([]Player, 0, len(order))
	rotated = append(rotated, order[start:]...)
	return append(rotated, order[:start]...)
}

// indexOf returns the position of the player with id in order, or -1.
func indexOf(order []Player, id int64) int {
	for i, p := range order {
		if p.ID == id {
			return i
		}
	}
	return -1
}
