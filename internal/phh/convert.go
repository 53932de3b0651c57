package phh

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lox/handtracker/internal/cards"
	"github.com/lox/handtracker/internal/game"
)

// FromHand converts a tracked hand. Players are numbered p1..pN in seat
// order. Board cards are dealt between the streets the hand reached, and
// hole cards are shown at the end when the hand went to showdown.
func FromHand(h *game.Hand, opts Options) (*HandHistory, error) {
	if h == nil {
		return nil, fmt.Errorf("phh: hand is nil")
	}

	players := append([]game.Player(nil), h.Players...)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })
	index := make(map[int64]int, len(players))
	for i, p := range players {
		index[p.ID] = i
	}

	board, err := cards.ParseBoard(h.Board)
	if err != nil {
		return nil, fmt.Errorf("phh: hand %d board: %w", h.ID, err)
	}

	hist := &HandHistory{
		Variant:           "NT",
		Table:             opts.Table,
		SeatCount:         opts.SeatCount,
		Antes:             make([]int, len(players)),
		BlindsOrStraddles: make([]int, len(players)),
		MinBet:            h.Stakes.Big,
		StartingStacks:    make([]int, len(players)),
		HandID:            fmt.Sprintf("hand-%d", h.ID),
		Timestamp:         h.Timestamp,
		Metadata:          map[string]any{},
	}
	if hist.Table == "" {
		hist.Table = h.GameType
	}

	var dealt []string
	for i, p := range players {
		hist.Seats = append(hist.Seats, p.Seat+1)
		hist.Players = append(hist.Players, p.Label())
		hist.StartingStacks[i] = p.InitialStack
		switch {
		case h.Straddle != nil && h.Straddle.Amount > 0 && p.Seat == h.Straddle.Seat:
			hist.BlindsOrStraddles[i] = h.Straddle.Amount
		case p.Seat == h.BigBlind:
			hist.BlindsOrStraddles[i] = h.Stakes.Big
		case p.Seat == h.SmallBlind:
			hist.BlindsOrStraddles[i] = h.Stakes.Small
		}
		if p.Seat+1 > hist.SeatCount {
			hist.SeatCount = p.Seat + 1
		}

		hole, err := cards.ParseHole(p.HoleCards)
		if err != nil {
			return nil, fmt.Errorf("phh: player %s: %w", p.Label(), err)
		}
		dealt = append(dealt, fmt.Sprintf("d dh p%d %s", i+1, joinCards(hole, "????")))
	}
	hist.Actions = append(hist.Actions, dealt...)

	var autoFilled []int
	street := game.Preflop
	for _, a := range h.Log.Actions() {
		for street < a.Street {
			street++
			if line, ok := dealBoard(board, street); ok {
				hist.Actions = append(hist.Actions, line)
			}
		}
		i, ok := index[a.PlayerID]
		if !ok {
			return nil, fmt.Errorf("phh: action %d references unknown player %d", a.Sequence, a.PlayerID)
		}
		if line, ok := FormatAction(i, a.Type, a.Amount); ok {
			hist.Actions = append(hist.Actions, line)
		}
		if a.AutoFilled {
			autoFilled = append(autoFilled, a.Sequence)
		}
	}
	for street < h.Street {
		street++
		if line, ok := dealBoard(board, street); ok {
			hist.Actions = append(hist.Actions, line)
		}
	}

	if h.IsShowdown() {
		for i, p := range players {
			if p.HoleCards == "" || h.HasFolded(&players[i]) {
				continue
			}
			hole, _ := cards.ParseHole(p.HoleCards)
			hist.Actions = append(hist.Actions, fmt.Sprintf("p%d sm %s", i+1, joinCards(hole, "")))
		}
	}

	if len(autoFilled) > 0 {
		hist.Metadata["auto_filled"] = autoFilled
	}
	if h.Note != "" {
		hist.Metadata["note"] = h.Note
	}
	if h.SessionID != 0 {
		hist.Metadata["session_id"] = h.SessionID
	}
	if hero := h.Hero(); hero != nil {
		hist.Metadata["hero"] = index[hero.ID] + 1
		hist.Metadata["profit_loss"] = h.ProfitLoss
	}
	if len(hist.Metadata) == 0 {
		hist.Metadata = nil
	}

	populateTimeFields(hist)
	return hist, nil
}

// dealBoard returns the board deal line for the start of street, if the
// recorded board has those cards.
func dealBoard(board []cards.Card, street game.Street) (string, bool) {
	var from, to int
	switch street {
	case game.Flop:
		from, to = 0, 3
	case game.Turn:
		from, to = 3, 4
	case game.River:
		from, to = 4, 5
	default:
		return "", false
	}
	if len(board) < to {
		return "", false
	}
	return "d db " + joinCards(board[from:to], ""), true
}

func joinCards(cs []cards.Card, unknown string) string {
	if len(cs) == 0 {
		return unknown
	}
	var sb strings.Builder
	for _, c := range cs {
		sb.WriteString(c.String())
	}
	return sb.String()
}

func populateTimeFields(hist *HandHistory) {
	t := hist.Timestamp
	if t.IsZero() {
		return
	}
	utc := t.UTC()
	hist.Time = utc.Format("15:04:05")
	hist.TimeZone = "UTC"
	hist.Day = utc.Day()
	hist.Month = int(utc.Month())
	hist.Year = utc.Year()
}
