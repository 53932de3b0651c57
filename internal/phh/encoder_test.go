package phh_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/phh"
)

func TestFormatAction(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		action    game.ActionType
		amount    int
		want      string
		shouldUse bool
	}{
		{"fold", 0, game.Fold, 0, "p1 f", true},
		{"check", 1, game.Check, 0, "p2 cc", true},
		{"call", 3, game.Call, 50, "p4 cc", true},
		{"raise", 0, game.Raise, 120, "p1 cbr 120", true},
		{"zero raise", 2, game.Raise, 0, "", false},
		{"straddle", 2, game.Straddle, 4, "# p3 straddle 4", true},
	}

	for _, tt := range tests {
		got, ok := phh.FormatAction(tt.index, tt.action, tt.amount)
		if ok != tt.shouldUse {
			t.Fatalf("%s: ok=%v want %v", tt.name, ok, tt.shouldUse)
		}
		if got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}

func TestEncodeHandHistory(t *testing.T) {
	hand := &phh.HandHistory{
		Variant:           "NT",
		Table:             "NLHE",
		SeatCount:         3,
		Seats:             []int{1, 2, 3},
		Antes:             []int{0, 0, 0},
		BlindsOrStraddles: []int{1, 2, 0},
		MinBet:            2,
		StartingStacks:    []int{200, 200, 200},
		Actions: []string{
			"d dh p1 AhKh",
			"d dh p2 ????",
			"d dh p3 ????",
			"p1 cbr 6",
			"p2 f",
			"p3 cc",
		},
		Players:  []string{"Hero", "Seat 1", "Seat 2"},
		HandID:   "hand-42",
		Time:     "15:22:00",
		TimeZone: "UTC",
		Day:      14,
		Month:    11,
		Year:     2025,
	}

	var buf bytes.Buffer
	if err := phh.Encode(&buf, hand); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	want := "" +
		"variant = \"NT\"\n" +
		"table = \"NLHE\"\n" +
		"seat_count = 3\n" +
		"seats = [1, 2, 3]\n" +
		"antes = [0, 0, 0]\n" +
		"blinds_or_straddles = [1, 2, 0]\n" +
		"min_bet = 2\n" +
		"starting_stacks = [200, 200, 200]\n" +
		"actions = [\"d dh p1 AhKh\", \"d dh p2 ????\", \"d dh p3 ????\", \"p1 cbr 6\", \"p2 f\", \"p3 cc\"]\n" +
		"players = [\"Hero\", \"Seat 1\", \"Seat 2\"]\n" +
		"hand = \"hand-42\"\n" +
		"time = \"15:22:00\"\n" +
		"time_zone = \"UTC\"\n" +
		"day = 14\n" +
		"month = 11\n" +
		"year = 2025\n"

	if got := buf.String(); got != want {
		t.Fatalf("Encode output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func trackedHand(t *testing.T) *game.Hand {
	t.Helper()
	h := &game.Hand{
		ID:         7,
		Timestamp:  time.Date(2025, time.November, 14, 15, 22, 0, 0, time.UTC),
		GameType:   "NLHE",
		Stakes:     game.Stakes{Small: 1, Big: 2},
		Button:     2,
		SmallBlind: 0,
		BigBlind:   1,
		Board:      "Qh,Jh,2c,7d",
		Note:       "hero bluffed",
		Players: []game.Player{
			{ID: 3, Name: "Button", Seat: 2, InitialStack: 150},
			{ID: 1, Name: "Hero", Seat: 0, InitialStack: 200, Hero: true, HoleCards: "As,Kd"},
			{ID: 2, Seat: 1, InitialStack: 100, HoleCards: "7c,7s"},
		},
	}
	steps := []game.Action{
		{PlayerID: 1, Type: game.Raise, Amount: 6, Street: game.Preflop, Sequence: 1},
		{PlayerID: 2, Type: game.Call, Amount: 6, Street: game.Preflop, Sequence: 2},
		{PlayerID: 3, Type: game.Fold, Street: game.Preflop, Sequence: 3, AutoFilled: true},
		{PlayerID: 1, Type: game.Check, Street: game.Flop, Sequence: 4},
		{PlayerID: 2, Type: game.Check, Street: game.Flop, Sequence: 5},
	}
	if err := h.Log.Append(steps...); err != nil {
		t.Fatal(err)
	}
	h.Street = game.Turn
	return h
}

func TestFromHand(t *testing.T) {
	hist, err := phh.FromHand(trackedHand(t), phh.Options{SeatCount: 9})
	if err != nil {
		t.Fatalf("FromHand: %v", err)
	}

	wantActions := []string{
		"d dh p1 AsKd",
		"d dh p2 7c7s",
		"d dh p3 ????",
		"p1 cbr 6",
		"p2 cc",
		"p3 f",
		"d db QhJh2c",
		"p1 cc",
		"p2 cc",
		"d db 7d",
	}
	if strings.Join(hist.Actions, "|") != strings.Join(wantActions, "|") {
		t.Fatalf("actions:\n got %q\nwant %q", hist.Actions, wantActions)
	}
	if got := hist.Players; strings.Join(got, ",") != "Hero,Seat 1,Button" {
		t.Fatalf("players in seat order, got %v", got)
	}
	if hist.BlindsOrStraddles[0] != 1 || hist.BlindsOrStraddles[1] != 2 || hist.BlindsOrStraddles[2] != 0 {
		t.Fatalf("blinds: %v", hist.BlindsOrStraddles)
	}
	if hist.StartingStacks[2] != 150 || hist.SeatCount != 9 || hist.Table != "NLHE" {
		t.Fatalf("unexpected header %+v", hist)
	}
	if got := hist.Metadata["auto_filled"]; got == nil || got.([]int)[0] != 3 {
		t.Fatalf("auto_filled metadata: %v", got)
	}
	if hist.Year != 2025 || hist.Time != "15:22:00" {
		t.Fatalf("time fields: %s %d", hist.Time, hist.Year)
	}
}

func TestFromHandShowdown(t *testing.T) {
	h := trackedHand(t)
	h.Board = "Qh,Jh,2c,7d,3s"
	h.Street = game.River

	hist, err := phh.FromHand(h, phh.Options{})
	if err != nil {
		t.Fatalf("FromHand: %v", err)
	}
	n := len(hist.Actions)
	tail := strings.Join(hist.Actions[n-3:], "|")
	if tail != "d db 3s|p1 sm AsKd|p2 sm 7c7s" {
		t.Fatalf("showdown tail %q", tail)
	}
	if hist.SeatCount != 3 {
		t.Fatalf("seat count defaults to highest seat, got %d", hist.SeatCount)
	}
}

func TestFromHandRejectsBadCards(t *testing.T) {
	h := trackedHand(t)
	h.Board = "Qh,Jh"
	if _, err := phh.FromHand(h, phh.Options{}); err == nil {
		t.Fatal("expected error for a two-card board")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	for n := 1; n <= 11; n++ {
		h := trackedHand(t)
		h.ID = int64(n)
		hist, err := phh.FromHand(h, phh.Options{})
		if err != nil {
			t.Fatal(err)
		}
		section, err := phh.EncodeSection(n, hist)
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(section)
	}

	if !strings.Contains(buf.String(), "[hand_1.metadata]") {
		t.Fatalf("metadata should nest under its section:\n%s", buf.String())
	}

	hands, err := phh.DecodeSession(&buf)
	if err != nil {
		t.Fatalf("DecodeSession: %v", err)
	}
	if len(hands) != 11 {
		t.Fatalf("got %d hands", len(hands))
	}
	if hands[1].HandID != "hand-2" || hands[10].HandID != "hand-11" {
		t.Fatalf("sections out of order: %s, %s", hands[1].HandID, hands[10].HandID)
	}
	if hands[0].Metadata["note"] != "hero bluffed" {
		t.Fatalf("metadata lost: %v", hands[0].Metadata)
	}
}
