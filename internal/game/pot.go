package game

// PotSize sums every Call and Raise amount recorded on streets up to and
// including upto. Side pots are never split out.
func (h *Hand) PotSize(upto Street) int {
	if h == nil {
		return 0
	}
	total := 0
	for _, a := range h.Log.actions {
		if a.Street <= upto && a.Type.Wagers() {
			total += a.Amount
		}
	}
	return total
}

// StreetPot sums the Call and Raise amounts recorded on a single street.
func (h *Hand) StreetPot(street Street) int {
	if h == nil {
		return 0
	}
	total := 0
	for _, a := range h.streetActions(street) {
		if a.Type.Wagers() {
			total += a.Amount
		}
	}
	return total
}
