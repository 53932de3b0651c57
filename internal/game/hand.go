package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Stakes is the ordered blind pair, e.g. {1, 2} for $1/$2.
type Stakes struct {
	Small int `json:"small"`
	Big   int `json:"big"`
}

func (s Stakes) String() string {
	return fmt.Sprintf("%d/%d", s.Small, s.Big)
}

// StraddleConfig is an optional extra forced preflop wager.
type StraddleConfig struct {
	Amount int `json:"amount"`
	Seat   int `json:"seat"`
}

// OrderPolicy selects how players are ordered for turn resolution and
// auto-fill.
type OrderPolicy int

const (
	// SeatOrder acts in ascending seat index on every street.
	SeatOrder OrderPolicy = iota
	// PositionalOrder starts preflop left of the straddle or big blind and
	// postflop left of the button.
	PositionalOrder
)

func (o OrderPolicy) String() string {
	if o == PositionalOrder {
		return "positional"
	}
	return "seat"
}

// ParseOrderPolicy converts a policy name back to an OrderPolicy.
func ParseOrderPolicy(name string) (OrderPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "seat":
		return SeatOrder, nil
	case "positional":
		return PositionalOrder, nil
	}
	return SeatOrder, fmt.Errorf("unknown order policy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (o OrderPolicy) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OrderPolicy) UnmarshalText(b []byte) error {
	v, err := ParseOrderPolicy(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Hand is the aggregate for a single tracked hand: its configuration, the
// players dealt in, and the ordered action log.
type Hand struct {
	ID         int64           `json:"id"`
	SessionID  int64           `json:"session_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	GameType   string          `json:"game_type"`
	Stakes     Stakes          `json:"stakes"`
	Street     Street          `json:"street"`
	Straddle   *StraddleConfig `json:"straddle,omitempty"`
	Button     int             `json:"button"`
	SmallBlind int             `json:"small_blind"`
	BigBlind   int             `json:"big_blind"`
	Order      OrderPolicy     `json:"order"`
	Note       string          `json:"note"`
	Board      string          `json:"board"`
	ProfitLoss int             `json:"profit_loss"` // Net result for the hero
	Players    []Player        `json:"players"`
	Log        ActionLog       `json:"actions"`
}

// Player returns the player with the given ID.
func (h *Hand) Player(id int64) *Player {
	if h == nil {
		return nil
	}
	for i := range h.Players {
		if h.Players[i].ID == id {
			return &h.Players[i]
		}
	}
	return nil
}

// PlayerAtSeat returns the player sitting in seat.
func (h *Hand) PlayerAtSeat(seat int) *Player {
	if h == nil {
		return nil
	}
	for i := range h.Players {
		if h.Players[i].Seat == seat {
			return &h.Players[i]
		}
	}
	return nil
}

// Validation errors reported by Validate.
var (
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrDuplicateSeat   = errors.New("duplicate seat")
	ErrMultipleHeroes  = errors.New("more than one hero")
	ErrUnknownPlayer   = errors.New("action references unknown player")
	ErrSequenceOrder   = errors.New("sequence numbers not strictly increasing")
	ErrNegativeAmount  = errors.New("negative amount")
)

// Validate checks the cross-entity consistency the engine itself assumes but
// never enforces. It is meant for the boundaries where hands enter the
// system; engine operations do not call it.
func (h *Hand) Validate() error {
	if h == nil {
		return errors.New("hand is nil")
	}

	var errs []error
	ids := make(map[int64]bool, len(h.Players))
	seats := make(map[int]bool, len(h.Players))
	heroes := 0
	for _, p := range h.Players {
		if p.ID != 0 {
			if ids[p.ID] {
				errs = append(errs, fmt.Errorf("%w: id %d", ErrDuplicatePlayer, p.ID))
			}
			ids[p.ID] = true
		}
		if seats[p.Seat] {
			errs = append(errs, fmt.Errorf("%w: seat %d", ErrDuplicateSeat, p.Seat))
		}
		seats[p.Seat] = true
		if p.Hero {
			heroes++
		}
		if p.InitialStack < 0 {
			errs = append(errs, fmt.Errorf("%w: stack of %s", ErrNegativeAmount, p.Label()))
		}
	}
	if heroes > 1 {
		errs = append(errs, ErrMultipleHeroes)
	}

	prev := 0
	for _, a := range h.Log.actions {
		if a.Sequence <= prev {
			errs = append(errs, fmt.Errorf("%w: %d after %d", ErrSequenceOrder, a.Sequence, prev))
		}
		prev = a.Sequence
		if !ids[a.PlayerID] {
			errs = append(errs, fmt.Errorf("%w: %d (sequence %d)", ErrUnknownPlayer, a.PlayerID, a.Sequence))
		}
		if a.Amount < 0 {
			errs = append(errs, fmt.Errorf("%w: sequence %d", ErrNegativeAmount, a.Sequence))
		}
	}
	if h.Straddle != nil && h.Straddle.Amount < 0 {
		errs = append(errs, fmt.Errorf("%w: straddle", ErrNegativeAmount))
	}

	return errors.Join(errs...)
}
