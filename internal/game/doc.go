// Package game tracks a single live poker hand as it is entered at the table.
//
// A Hand holds the players and an append-only ActionLog. Everything else is
// derived from the log on demand:
//
//	h := &game.Hand{Stakes: game.Stakes{Small: 1, Big: 2}, Players: players}
//	p := h.NextToAct()
//	legal := h.AvailableActions(p)   // [Fold Call Raise]
//	h.AutoFillSkipped(p)             // backfill anyone p skipped
//	h.Log.Append(game.Action{PlayerID: p.ID, Type: game.Call, Amount: 2,
//	    Street: h.Street, Sequence: h.Log.NextSequence()})
//	pot := h.PotSize(h.Street)
//
// # Action order
//
// ActionOrder is the one ordering used by NextToAct and AutoFillSkipped.
// SeatOrder, the default, walks ascending seats on every street.
// PositionalOrder rotates that ring to start left of the big blind (or
// straddle) preflop and left of the button afterwards.
//
// # Amounts
//
// Call and Raise amounts are the player's total for the street at the time
// of the action, not increments. Bet and Straddle are declared for stored
// data but never count towards a contribution.
//
// None of the queries fail: a nil hand or player, or empty players and log,
// give an empty result. Hand.Validate is for the places a hand enters the
// program.
package game
