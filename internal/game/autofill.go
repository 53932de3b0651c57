package game

// AutoFillSkipped synthesizes actions for eligible players ahead of p in the
// action order who have not acted on the current street. Preflop they fold;
// on later streets they check, or fold if someone has already raised.
//
// The synthesized actions are appended to the log, flagged AutoFilled, and
// returned. Call this immediately before appending p's own action so that
// UndoLast can remove the pair together.
func (h *Hand) AutoFillSkipped(p *Player) []Action {
	if h == nil || p == nil || len(h.Players) == 0 {
		return nil
	}

	order := h.ActionOrder(h.Street)
	idx := indexOf(order, p.ID)
	if idx <= 0 {
		return nil
	}

	fill := Check
	if h.Street == Preflop || len(h.raisesOn(h.Street)) > 0 {
		fill = Fold
	}

	seq := h.Log.NextSequence()
	var filled []Action
	for _, skipped := range order[:idx] {
		if h.hasActed(skipped.ID, h.Street) {
			continue
		}
		filled = append(filled, Action{
			PlayerID:   skipped.ID,
			Type:       fill,
			Street:     h.Street,
			Sequence:   seq,
			AutoFilled: true,
		})
		seq++
	}

	if len(filled) > 0 {
		// Sequences come from NextSequence so the append cannot fail.
		_ = h.Log.Append(filled...)
	}
	return filled
}
