package tracker

import (
	"context"

	"github.com/lox/handtracker/internal/game"
)

// State is the read model the presentation surfaces render from.
type State struct {
	Hand            *game.Hand        `json:"hand"`
	NextToAct       *game.Player      `json:"next_to_act,omitempty"`
	Legal           []game.ActionType `json:"legal"`
	Wager           game.Wager        `json:"wager"`
	Pot             int               `json:"pot"`
	StreetPot       int               `json:"street_pot"`
	MinimumRaise    int               `json:"minimum_raise"`
	RoundComplete   bool              `json:"round_complete"`
	HandOver        bool              `json:"hand_over"`
	Showdown        bool              `json:"showdown"`
	Hero            *game.Player      `json:"hero,omitempty"`
	ShowdownPlayers []game.Player     `json:"showdown_players"`
}

// Snapshot loads a hand and derives its current state.
func (t *Tracker) Snapshot(ctx context.Context, handID int64) (State, error) {
	h, err := t.store.GetHand(ctx, handID)
	if err != nil {
		return State{}, err
	}
	return NewState(h), nil
}

// NewState derives the state of h. Legal, Wager and MinimumRaise describe
// the next player to act and are empty when nobody is.
func NewState(h *game.Hand) State {
	s := State{
		Hand:            h,
		Legal:           []game.ActionType{},
		Pot:             h.PotSize(h.Street),
		StreetPot:       h.StreetPot(h.Street),
		RoundComplete:   h.IsBettingRoundComplete(h.Street),
		HandOver:        len(h.LivePlayers()) < 2,
		Showdown:        h.IsShowdown(),
		Hero:            h.Hero(),
		ShowdownPlayers: h.ShowdownPlayers(),
	}
	if p := h.NextToAct(); p != nil {
		s.NextToAct = p
		s.Legal = h.AvailableActions(p)
		s.Wager = h.Wager(p)
		s.MinimumRaise = h.MinimumRaise(p)
	}
	return s
}
