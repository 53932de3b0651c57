package game

// NextToAct returns the next player obligated to act on the current street,
// or nil once every eligible player has acted or fewer than two can still
// act.
func (h *Hand) NextToAct() *Player {
	if h == nil {
		return nil
	}

	order := h.ActionOrder(h.Street)
	if len(order) < 2 {
		return nil
	}

	// Start just after whoever acted last on this street, or at the top of
	// the order when nobody has.
	start := 0
	actions := h.streetActions(h.Street)
	if len(actions) > 0 {
		last := actions[len(actions)-1]
		if idx := indexOf(order, last.PlayerID); idx >= 0 {
			start = idx + 1
		}
	}

	for i := 0; i < len(order); i++ {
		p := order[(start+i)%len(order)]
		if !h.hasActed(p.ID, h.Street) {
			return h.Player(p.ID)
		}
	}
	return nil
}

// IsBettingRoundComplete reports whether nobody is left to act. The street
// argument is informational; completeness is always judged on the hand's
// current street.
func (h *Hand) IsBettingRoundComplete(street Street) bool {
	return h.NextToAct() == nil
}
