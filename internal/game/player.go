package game

import (
	"fmt"
	"strings"
)

// PlayerKind is a coarse read on how a player plays. The engine ignores it.
type PlayerKind int

const (
	Unknown PlayerKind = iota
	Fish
	Whale
	Shark
	Nit
	Reg
)

var kindNames = [...]string{"unknown", "fish", "whale", "shark", "nit", "reg"}

func (k PlayerKind) String() string {
	if k < Unknown || k > Reg {
		return kindNames[Unknown]
	}
	return kindNames[k]
}

// ParsePlayerKind converts a kind name back to a PlayerKind. The empty string
// is Unknown.
func ParsePlayerKind(name string) (PlayerKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Unknown, nil
	}
	for i, n := range kindNames {
		if n == name {
			return PlayerKind(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown player kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k PlayerKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PlayerKind) UnmarshalText(b []byte) error {
	v, err := ParsePlayerKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Player represents a player in a hand. Seats and stacks are fixed for the
// life of the hand.
type Player struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Seat         int        `json:"seat"`
	InitialStack int        `json:"initial_stack"`
	Hero         bool       `json:"hero"`
	HoleCards    string     `json:"hole_cards"` // e.g. "As,Kd"; empty when unknown
	Kind         PlayerKind `json:"kind"`
}

// Label returns the player's name, falling back to the seat.
func (p Player) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Seat %d", p.Seat)
}
