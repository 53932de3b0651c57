package game

// Queries over the action log shared by the legality, turn, auto-fill and
// showdown code. All of them tolerate a nil hand or player.

// HasFolded reports whether the player has a fold anywhere in the hand.
func (h *Hand) HasFolded(p *Player) bool {
	if h == nil || p == nil {
		return false
	}
	for _, a := range h.Log.actions {
		if a.PlayerID == p.ID && a.Type == Fold {
			return true
		}
	}
	return false
}

// IsAllIn reports whether the player's calls and raises over the whole hand
// add up to their starting stack.
func (h *Hand) IsAllIn(p *Player) bool {
	if h == nil || p == nil {
		return false
	}
	return p.InitialStack-h.totalContribution(p.ID) == 0
}

// IsEligible reports whether the player can still act: not folded and not
// all-in.
func (h *Hand) IsEligible(p *Player) bool {
	return h != nil && p != nil && !h.HasFolded(p) && !h.IsAllIn(p)
}

// totalContribution sums the player's calls and raises across every street.
func (h *Hand) totalContribution(playerID int64) int {
	total := 0
	for _, a := range h.Log.actions {
		if a.PlayerID == playerID && a.Type.Wagers() {
			total += a.Amount
		}
	}
	return total
}

// streetContribution sums the player's calls and raises on one street.
func (h *Hand) streetContribution(playerID int64, street Street) int {
	total := 0
	for _, a := range h.Log.actions {
		if a.PlayerID == playerID && a.Street == street && a.Type.Wagers() {
			total += a.Amount
		}
	}
	return total
}

// hasActed reports whether the player has any action on the street.
func (h *Hand) hasActed(playerID int64, street Street) bool {
	for _, a := range h.Log.actions {
		if a.PlayerID == playerID && a.Street == street {
			return true
		}
	}
	return false
}

// streetActions returns the actions recorded on a street, in sequence order.
func (h *Hand) streetActions(street Street) []Action {
	var out []Action
	for _, a := range h.Log.actions {
		if a.Street == street {
			out = append(out, a)
		}
	}
	return out
}

// raisesOn returns the raises recorded on a street, in sequence order.
func (h *Hand) raisesOn(street Street) []Action {
	var out []Action
	for _, a := range h.Log.actions {
		if a.Street == street && a.Type == Raise {
			out = append(out, a)
		}
	}
	return out
}

// LivePlayers returns the players who have not folded, in player-list order.
func (h *Hand) LivePlayers() []Player {
	if h == nil {
		return nil
	}
	var out []Player
	for i := range h.Players {
		if !h.HasFolded(&h.Players[i]) {
			out = append(out, h.Players[i])
		}
	}
	return out
}
