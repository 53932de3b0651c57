package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lox/handtracker/internal/cards"
	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/store"
)

// NewHand describes a hand to start. Zero stakes, an empty game type, a nil
// order and zero stacks fall back to the session, then the defaults.
type NewHand struct {
	SessionID  int64                `json:"session_id"`
	Players    []game.Player        `json:"players"`
	Button     int                  `json:"button"`
	SmallBlind int                  `json:"small_blind"`
	BigBlind   int                  `json:"big_blind"`
	Stakes     game.Stakes          `json:"stakes"`
	Straddle   *game.StraddleConfig `json:"straddle,omitempty"`
	GameType   string               `json:"game_type"`
	Order      *game.OrderPolicy    `json:"order,omitempty"`
	Note       string               `json:"note"`
}

// StartHand creates and saves a hand on the preflop with an empty log.
func (t *Tracker) StartHand(ctx context.Context, req NewHand) (*game.Hand, error) {
	if len(req.Players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	h := &game.Hand{
		SessionID:  req.SessionID,
		Timestamp:  t.clock.Now().UTC(),
		GameType:   req.GameType,
		Stakes:     req.Stakes,
		Street:     game.Preflop,
		Straddle:   req.Straddle,
		Button:     req.Button,
		SmallBlind: req.SmallBlind,
		BigBlind:   req.BigBlind,
		Order:      t.defaults.Order,
		Note:       req.Note,
	}
	if req.Order != nil {
		h.Order = *req.Order
	}

	if req.SessionID != 0 {
		sess, err := t.store.GetSession(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", req.SessionID, err)
		}
		if h.Stakes.Big == 0 {
			h.Stakes = sess.Stakes
		}
		if h.GameType == "" {
			h.GameType = sess.GameType
		}
	}
	if h.Stakes.Big == 0 {
		h.Stakes = t.defaults.Stakes
	}
	if h.GameType == "" {
		h.GameType = t.defaults.GameType
	}

	for _, p := range req.Players {
		p.ID = 0
		if p.InitialStack == 0 {
			p.InitialStack = t.defaults.StartingStack
		}
		h.Players = append(h.Players, p)
	}

	if err := normalizeCards(h); err != nil {
		return nil, err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	if err := t.store.SaveHand(ctx, h); err != nil {
		return nil, err
	}

	t.logger.Info("Started hand", "hand", h.ID, "players", len(h.Players), "stakes", h.Stakes)
	t.bus.Publish(HandStartedEvent{
		eventBase: t.base(h.ID),
		Players:   append([]game.Player(nil), h.Players...),
		Stakes:    h.Stakes,
	})
	return h, nil
}

// Record enters playerID's action on the current street. Players ahead of
// them who were skipped are auto-filled first. The appended actions are
// returned in log order, auto-filled ones first.
//
// A call always records the amount the player faces (capped at all-in); a
// non-zero call amount must match it. A raise must exceed the current bet
// and reach the minimum raise unless it puts the player all-in. Checks and
// folds ignore the amount.
func (t *Tracker) Record(ctx context.Context, handID, playerID int64, typ game.ActionType, amount int) ([]game.Action, error) {
	var appended []game.Action
	_, err := t.mutate(ctx, handID, func(h *game.Hand) ([]Event, error) {
		p := h.Player(playerID)
		if p == nil {
			return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
		}

		switch typ {
		case game.Bet, game.Straddle:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, typ)
		}
		if h.IsBettingRoundComplete(h.Street) {
			return nil, fmt.Errorf("%w on the %s", ErrRoundComplete, h.Street)
		}
		if acted(h, playerID) {
			return nil, fmt.Errorf("%w: %s has already acted on the %s", ErrIllegalAction, p.Label(), h.Street)
		}
		if !h.CanTake(p, typ) {
			return nil, fmt.Errorf("%w: %s cannot %s (can %s)", ErrIllegalAction, p.Label(), typ, joinActions(h.AvailableActions(p)))
		}

		amount, err := t.resolveAmount(h, p, typ, amount)
		if err != nil {
			return nil, err
		}

		filled := h.AutoFillSkipped(p)
		potBefore := h.PotSize(h.Street)
		action := game.Action{
			PlayerID: p.ID,
			Type:     typ,
			Amount:   amount,
			Street:   h.Street,
			Sequence: h.Log.NextSequence(),
		}
		if err := h.Log.Append(action); err != nil {
			return nil, err
		}

		appended = append(filled, action)
		events := make([]Event, 0, len(appended))
		for _, a := range appended {
			pot := potBefore
			if !a.AutoFilled {
				pot = h.PotSize(h.Street)
			}
			events = append(events, ActionRecordedEvent{
				eventBase: t.base(h.ID),
				Action:    a,
				Player:    h.Player(a.PlayerID).Label(),
				PotAfter:  pot,
			})
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Debug("Recorded action", "hand", handID, "player", playerID, "type", typ, "amount", appended[len(appended)-1].Amount, "auto_filled", len(appended)-1)
	return appended, nil
}

func (t *Tracker) resolveAmount(h *game.Hand, p *game.Player, typ game.ActionType, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: %d", ErrAmount, amount)
	}

	w := h.Wager(p)
	allIn := w.Contribution + w.Remaining
	switch typ {
	case game.Check, game.Fold:
		return 0, nil
	case game.Call:
		if amount != 0 && amount != w.CallAmount {
			return 0, fmt.Errorf("%w: call of %d, facing %d", ErrAmount, amount, w.CallAmount)
		}
		return w.CallAmount, nil
	case game.Raise:
		if amount == 0 {
			return 0, fmt.Errorf("%w: raise needs an amount", ErrAmount)
		}
		if amount > allIn {
			return 0, fmt.Errorf("%w: raise to %d exceeds stack of %d", ErrAmount, amount, allIn)
		}
		if amount <= w.CurrentBet && amount != allIn {
			return 0, fmt.Errorf("%w: raise to %d does not exceed the bet of %d", ErrRaiseTooSmall, amount, w.CurrentBet)
		}
		if minRaise := h.MinimumRaise(p); amount < minRaise && amount != allIn {
			return 0, fmt.Errorf("%w: %d < %d", ErrRaiseTooSmall, amount, minRaise)
		}
		return amount, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedAction, typ)
}

func acted(h *game.Hand, playerID int64) bool {
	for _, a := range h.Log.Actions() {
		if a.Street == h.Street && a.PlayerID == playerID {
			return true
		}
	}
	return false
}

func joinActions(types []game.ActionType) string {
	if len(types) == 0 {
		return "nothing"
	}
	names := make([]string, len(types))
	for i, a := range types {
		names[i] = a.String()
	}
	return strings.Join(names, "/")
}

// Undo removes the last action and the auto-filled actions recorded with it.
// It returns the removed actions, most recent first; an empty log is not an
// error.
//
// Undo only edits the log. The street is never moved back, so undoing the
// last action of a finished street leaves the hand on the later street with
// that round reopened in the log.
func (t *Tracker) Undo(ctx context.Context, handID int64) ([]game.Action, error) {
	var removed []game.Action
	_, err := t.mutate(ctx, handID, func(h *game.Hand) ([]Event, error) {
		removed = h.UndoLast()
		if len(removed) == 0 {
			return nil, nil
		}
		return []Event{ActionUndoneEvent{eventBase: t.base(h.ID), Removed: removed}}, nil
	})
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		t.logger.Debug("Undid action", "hand", handID, "removed", len(removed))
	}
	return removed, nil
}

// AdvanceStreet moves the hand to the next street once the current betting
// round is complete.
func (t *Tracker) AdvanceStreet(ctx context.Context, handID int64) (*game.Hand, error) {
	h, err := t.mutate(ctx, handID, func(h *game.Hand) ([]Event, error) {
		if h.Street == game.River {
			return nil, ErrFinalStreet
		}
		if len(h.LivePlayers()) < 2 {
			return nil, ErrHandOver
		}
		if !h.IsBettingRoundComplete(h.Street) {
			next := h.NextToAct()
			return nil, fmt.Errorf("%w: %s to act", ErrRoundIncomplete, next.Label())
		}

		h.Street = h.Street.Next()
		return []Event{StreetAdvancedEvent{
			eventBase: t.base(h.ID),
			Street:    h.Street,
			Pot:       h.PotSize(h.Street),
			Board:     h.Board,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Debug("Advanced street", "hand", handID, "street", h.Street)
	return h, nil
}

// SetHoleCards records a player's hole cards. An empty string clears them.
func (t *Tracker) SetHoleCards(ctx context.Context, handID, playerID int64, holeCards string) (*game.Hand, error) {
	return t.mutate(ctx, handID, func(h *game.Hand) ([]Event, error) {
		p := h.Player(playerID)
		if p == nil {
			return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, playerID)
		}
		p.HoleCards = holeCards
		if err := normalizeCards(h); err != nil {
			return nil, err
		}
		return []Event{HandUpdatedEvent{eventBase: t.base(h.ID), Field: "hole_cards"}}, nil
	})
}

// SetBoard records the community cards.
func (t *Tracker) SetBoard(ctx context.Context, handID int64, board string) (*game.Hand, error) {
	return t.mutate(ctx, handID, func(h *game.Hand) ([]Event, error) {
		h.Board = board
		if err := normalizeCards(h); err != nil {
			return nil, err
		}
		return []Event{HandUpdatedEvent{eventBase: t.base(h.ID), Field: "board"}}, nil
	})
}

// Annotation changes a hand's note and result. Nil fields are left alone.
type Annotation struct {
	Note       *string `json:"note,omitempty"`
	ProfitLoss *int    `json:"profit_loss,omitempty"`
}

func (t *Tracker) Annotate(ctx context.Context, handID int64, a Annotation) (*game.Hand, error) {
	return t.mutate(ctx, handID, func(h *game.Hand) ([]Event, error) {
		if a.Note != nil {
			h.Note = *a.Note
		}
		if a.ProfitLoss != nil {
			h.ProfitLoss = *a.ProfitLoss
		}
		return []Event{HandUpdatedEvent{eventBase: t.base(h.ID), Field: "annotation"}}, nil
	})
}

// normalizeCards validates every hole-card string and the board, rewrites
// them in canonical form, and rejects a card appearing twice.
func normalizeCards(h *game.Hand) error {
	sets := make([][]cards.Card, 0, len(h.Players)+1)
	for i := range h.Players {
		p := &h.Players[i]
		cs, err := cards.ParseHole(p.HoleCards)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Label(), err)
		}
		p.HoleCards = cards.Format(cs)
		sets = append(sets, cs)
	}

	board, err := cards.ParseBoard(h.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	h.Board = cards.Format(board)
	sets = append(sets, board)

	return cards.Disjoint(sets...)
}

// IsNotFound reports whether err means a session or hand does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
