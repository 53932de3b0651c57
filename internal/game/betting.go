package game

// Wager holds the numbers behind a player's legal actions on the current
// street.
type Wager struct {
	CurrentBet   int `json:"current_bet"`  // Largest single amount this street, or the default opening bet
	Contribution int `json:"contribution"` // Player's calls and raises this street
	ToCall       int `json:"to_call"`
	Remaining    int `json:"remaining"`   // Stack left after every street's calls and raises
	CallAmount   int `json:"call_amount"` // Amount to record for a call, capped at all-in
}

// Wager computes the betting numbers for p on the hand's current street.
func (h *Hand) Wager(p *Player) Wager {
	if h == nil || p == nil {
		return Wager{}
	}

	w := Wager{
		CurrentBet:   h.currentBet(),
		Contribution: h.streetContribution(p.ID, h.Street),
		Remaining:    p.InitialStack - h.totalContribution(p.ID),
	}
	w.ToCall = w.CurrentBet - w.Contribution
	w.CallAmount = w.CurrentBet
	if w.ToCall > w.Remaining {
		w.CallAmount = w.Contribution + w.Remaining
	}
	return w
}

// AvailableActions returns the actions p may take right now, in the order
// Check/Fold, Call, Raise. Folded and all-in players get nothing.
func (h *Hand) AvailableActions(p *Player) []ActionType {
	actions := []ActionType{}
	if h == nil || p == nil {
		return actions
	}
	if h.HasFolded(p) || h.IsAllIn(p) {
		return actions
	}

	w := h.Wager(p)
	if w.ToCall <= 0 {
		// Nothing to call - can check
		actions = append(actions, Check)
		if w.Remaining > 0 {
			actions = append(actions, Raise)
		}
		return actions
	}

	actions = append(actions, Fold)
	// A call for less than ToCall is a call all-in
	if w.Remaining > 0 {
		actions = append(actions, Call)
	}
	if w.Remaining > w.ToCall {
		actions = append(actions, Raise)
	}
	return actions
}

// CanTake reports whether action is among p's available actions.
func (h *Hand) CanTake(p *Player, action ActionType) bool {
	for _, a := range h.AvailableActions(p) {
		if a == action {
			return true
		}
	}
	return false
}

// currentBet is the largest single action amount on the current street, or
// the default opening bet when the street has no actions yet.
func (h *Hand) currentBet() int {
	actions := h.streetActions(h.Street)
	if len(actions) == 0 {
		return h.defaultBet(h.Street)
	}
	best := actions[0].Amount
	for _, a := range actions[1:] {
		if a.Amount > best {
			best = a.Amount
		}
	}
	return best
}

// defaultBet is the amount facing the first player on a street: the
// straddle or big blind preflop, nothing afterwards.
func (h *Hand) defaultBet(street Street) int {
	if street != Preflop {
		return 0
	}
	if h.Straddle != nil && h.Straddle.Amount > 0 {
		return h.Straddle.Amount
	}
	return h.Stakes.Big
}

// MinimumRaise returns the smallest legal raise on the current street,
// computed from the recorded raise amounts:
//
//   - no raises: the big blind preflop, zero afterwards
//   - one raise: twice its amount
//   - otherwise: the last raise plus its increment over the one before
//
// The amounts are street totals, not increments, so from the second raise
// on this differs from the usual no-limit rule. It is kept as recorded.
func (h *Hand) MinimumRaise(p *Player) int {
	if h == nil {
		return 0
	}

	raises := h.raisesOn(h.Street)
	switch len(raises) {
	case 0:
		if h.Street == Preflop {
			return h.Stakes.Big
		}
		return 0
	case 1:
		return 2 * raises[0].Amount
	default:
		last := raises[len(raises)-1].Amount
		prev := raises[len(raises)-2].Amount
		return last + (last - prev)
	}
}
