package game

// UndoLast removes the most recent action together with the run of
// auto-filled actions directly before it, and returns what was removed with
// the most recent first. An empty log is left alone.
func (h *Hand) UndoLast() []Action {
	if h == nil || h.Log.Len() == 0 {
		return nil
	}

	n := h.Log.Len() - 1
	for n > 0 && h.Log.At(n-1).AutoFilled {
		n--
	}

	removed := make([]Action, 0, h.Log.Len()-n)
	for i := h.Log.Len() - 1; i >= n; i-- {
		removed = append(removed, h.Log.At(i))
	}
	h.Log.Truncate(n)
	return removed
}
