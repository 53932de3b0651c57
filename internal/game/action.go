package game

import (
	"fmt"
	"strings"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{"preflop", "flop", "turn", "river"}

func (s Street) String() string {
	if s < Preflop || s > River {
		return fmt.Sprintf("street(%d)", int(s))
	}
	return streetNames[s]
}

// Next returns the street that follows s. River has no successor and
// returns itself.
func (s Street) Next() Street {
	if s >= River {
		return River
	}
	return s + 1
}

// ParseStreet converts a street name back to a Street.
func ParseStreet(name string) (Street, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range streetNames {
		if n == name {
			return Street(i), nil
		}
	}
	return Preflop, fmt.Errorf("unknown street %q", name)
}

// ActionType represents a player decision
type ActionType int

const (
	Check ActionType = iota
	Call
	Bet
	Raise
	Fold
	Straddle
)

var actionNames = [...]string{"check", "call", "bet", "raise", "fold", "straddle"}

func (a ActionType) String() string {
	if a < Check || a > Straddle {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// Wagers reports whether the action puts chips in the pot. Only calls and
// raises count; Bet and Straddle are never produced and carry no chips.
func (a ActionType) Wagers() bool {
	return a == Call || a == Raise
}

// ParseActionType converts an action name (or its single-letter shorthand)
// back to an ActionType.
func ParseActionType(name string) (ActionType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "x", "k":
		return Check, nil
	case "c":
		return Call, nil
	case "b":
		return Bet, nil
	case "r":
		return Raise, nil
	case "f":
		return Fold, nil
	}
	for i, n := range actionNames {
		if n == name {
			return ActionType(i), nil
		}
	}
	return Check, fmt.Errorf("unknown action %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Street) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Street) UnmarshalText(b []byte) error {
	v, err := ParseStreet(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a ActionType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ActionType) UnmarshalText(b []byte) error {
	v, err := ParseActionType(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Action is a single recorded decision, or a synthesized stand-in for a
// player the recorded history skipped.
type Action struct {
	PlayerID   int64      `json:"player_id"`
	Type       ActionType `json:"type"`
	Amount     int        `json:"amount"` // Total put in on this street as of this action
	Street     Street     `json:"street"`
	Sequence   int        `json:"sequence"`
	AutoFilled bool       `json:"auto_filled"`
}

func (a Action) String() string {
	s := fmt.Sprintf("#%d %s player=%d %s", a.Sequence, a.Street, a.PlayerID, a.Type)
	if a.Type.Wagers() {
		s += fmt.Sprintf(" %d", a.Amount)
	}
	if a.AutoFilled {
		s += " (auto)"
	}
	return s
}
