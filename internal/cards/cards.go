// Package cards validates the hole-card and board strings recorded against
// hands, e.g. "As,Kd" or "Qh Jh 2c".
package cards

import (
	"errors"
	"fmt"
	"strings"

	poker "github.com/paulhankin/poker"
)

var (
	ErrInvalidCard   = errors.New("invalid card")
	ErrDuplicateCard = errors.New("duplicate card")
	ErrCardCount     = errors.New("wrong number of cards")
)

const ranks = "A23456789TJQK" // index+1 is the library rank, ace low

// Card is a single validated card.
type Card struct {
	Rank byte // One of "23456789TJQKA"
	Suit byte // One of "cdhs"
	pc   poker.Card
}

func (c Card) String() string {
	return string([]byte{c.Rank, c.Suit})
}

// New builds a card from rank and suit characters, in either case.
func New(rank, suit byte) (Card, error) {
	r := strings.IndexByte(ranks, upper(rank))
	if r < 0 {
		return Card{}, fmt.Errorf("%w: rank %q", ErrInvalidCard, rank)
	}

	var s poker.Suit
	switch lower(suit) {
	case 'c':
		s = poker.Club
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	case 's':
		s = poker.Spade
	default:
		return Card{}, fmt.Errorf("%w: suit %q", ErrInvalidCard, suit)
	}

	pc, err := poker.MakeCard(s, poker.Rank(r+1))
	if err != nil {
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	return Card{Rank: ranks[r], Suit: lower(suit), pc: pc}, nil
}

// Parse reads a list of cards separated by commas, spaces, or nothing at
// all. "10" is accepted for a ten. Repeated cards are rejected.
func Parse(s string) ([]Card, error) {
	s = strings.NewReplacer(",", "", " ", "", "10", "T").Replace(strings.TrimSpace(s))
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	out := make([]Card, 0, len(s)/2)
	seen := make(map[poker.Card]bool, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := New(s[i], s[i+1])
		if err != nil {
			return nil, err
		}
		if seen[c.pc] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c.pc] = true
		out = append(out, c)
	}
	return out, nil
}

// Format joins cards with commas, the form stored on hands and players.
func Format(cs []Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// ParseHole parses a player's hole cards: none, or exactly two.
func ParseHole(s string) ([]Card, error) {
	cs, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if len(cs) != 0 && len(cs) != 2 {
		return nil, fmt.Errorf("%w: hole cards need 2, got %d", ErrCardCount, len(cs))
	}
	return cs, nil
}

// ParseBoard parses community cards: none, a flop, a turn, or a river.
func ParseBoard(s string) ([]Card, error) {
	cs, err := Parse(s)
	if err != nil {
		return nil, err
	}
	switch len(cs) {
	case 0, 3, 4, 5:
		return cs, nil
	}
	return nil, fmt.Errorf("%w: board needs 0, 3, 4 or 5, got %d", ErrCardCount, len(cs))
}

// Disjoint reports an error when any card appears in more than one set.
func Disjoint(sets ...[]Card) error {
	seen := make(map[poker.Card]bool)
	for _, set := range sets {
		for _, c := range set {
			if seen[c.pc] {
				return fmt.Errorf("%w: %s", ErrDuplicateCard, c)
			}
			seen[c.pc] = true
		}
	}
	return nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
