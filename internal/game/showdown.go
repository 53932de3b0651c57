package game

// Hero returns the player flagged as hero, or nil.
func (h *Hand) Hero() *Player {
	if h == nil {
		return nil
	}
	for i := range h.Players {
		if h.Players[i].Hero {
			return &h.Players[i]
		}
	}
	return nil
}

// ShowdownPlayers returns the opponents still in the hand whose hole cards
// were recorded.
func (h *Hand) ShowdownPlayers() []Player {
	if h == nil {
		return nil
	}
	var out []Player
	for i := range h.Players {
		p := &h.Players[i]
		if p.Hero || p.HoleCards == "" || h.HasFolded(p) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// IsShowdown reports whether the hand is on the river with at least two
// players left, hero included.
func (h *Hand) IsShowdown() bool {
	if h == nil || h.Street != River {
		return false
	}
	return len(h.LivePlayers()) >= 2
}
