package tui

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/store"
	"github.com/lox/handtracker/internal/tracker"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
		err   string
	}{
		{input: "fold", want: Command{Kind: CommandAction, Action: game.Fold}},
		{input: "X", want: Command{Kind: CommandAction, Action: game.Check}},
		{input: "call", want: Command{Kind: CommandAction, Action: game.Call}},
		{input: "call 12", want: Command{Kind: CommandAction, Action: game.Call, Amount: 12}},
		{input: "raise $30", want: Command{Kind: CommandAction, Action: game.Raise, Amount: 30}},
		{input: "3 raise 30", want: Command{Kind: CommandAction, Seat: 3, HasSeat: true, Action: game.Raise, Amount: 30}},
		{input: "undo", want: Command{Kind: CommandUndo}},
		{input: "next", want: Command{Kind: CommandNext}},
		{input: "board Qh Jh 2c", want: Command{Kind: CommandBoard, Text: "Qh Jh 2c"}},
		{input: "cards 2 As Kd", want: Command{Kind: CommandCards, Seat: 2, HasSeat: true, Text: "As Kd"}},
		{input: "note flopped a set", want: Command{Kind: CommandNote, Text: "flopped a set"}},
		{input: "quit", want: Command{Kind: CommandQuit}},
		{input: "raise", err: "usage: raise"},
		{input: "raise lots", err: "invalid amount"},
		{input: "shove", err: "unknown command"},
		{input: "4", err: "missing action"},
		{input: "cards x As,Kd", err: "invalid seat"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if tt.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestModel(t *testing.T) (*Model, *game.Hand) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, store.Options{Path: ":memory:", Logger: log.New(io.Discard)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2030, 2, 2, 22, 0, 0, 0, time.UTC))
	tr := tracker.New(s, tracker.WithLogger(log.New(io.Discard)), tracker.WithClock(clock))

	h, err := tr.StartHand(ctx, tracker.NewHand{
		Players: []game.Player{
			{Name: "Hero", Seat: 0, Hero: true, HoleCards: "Ah,Kh"},
			{Name: "Alice", Seat: 1},
			{Name: "Bob", Seat: 2},
		},
		Button:   2,
		BigBlind: 1,
	})
	require.NoError(t, err)

	m := NewModelWithOptions(ctx, tr, h.ID, log.New(io.Discard), true)
	run(t, m, m.load())
	return m, h
}

// run feeds the message produced by cmd back into the model, the way the
// Bubble Tea runtime would.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func submit(t *testing.T, m *Model, input string) {
	t.Helper()
	run(t, m, m.Submit(input))
}

func lastLine(m *Model) string {
	lines := m.CapturedLog()
	return lines[len(lines)-1]
}

func TestModelEntersHand(t *testing.T) {
	m, h := newTestModel(t)

	require.True(t, m.loaded)
	assert.Contains(t, m.CapturedLog()[0], "Hand #")
	assert.Equal(t, "Hero", m.State().NextToAct.Name)

	submit(t, m, "raise 6")
	assert.Equal(t, "Hero raises to $6", lastLine(m))

	// Bob acts next; Alice is folded for him.
	submit(t, m, "2 call")
	lines := m.CapturedLog()
	assert.Equal(t, "Alice folds (auto)", lines[len(lines)-2])
	assert.Equal(t, "Bob calls $6", lines[len(lines)-1])
	assert.True(t, m.State().RoundComplete)

	submit(t, m, "next")
	assert.Equal(t, "*** FLOP *** ($12)", lastLine(m))
	assert.Equal(t, game.Flop, m.State().Hand.Street)

	submit(t, m, "board qh jh 2c")
	assert.Equal(t, "Board: [Qh Jh 2c]", lastLine(m))

	submit(t, m, "check")
	assert.Equal(t, "Hero checks", lastLine(m))

	submit(t, m, "undo")
	assert.Equal(t, "Undo: Hero checks", lastLine(m))
	assert.Equal(t, "Hero", m.State().NextToAct.Name)

	submit(t, m, "cards 2 7c 7d")
	assert.Equal(t, "Bob: [7c 7d]", lastLine(m))

	submit(t, m, "note standard")
	stored, err := m.tracker.Hand(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, "standard", stored.Note)
	assert.Equal(t, "7c,7d", stored.PlayerAtSeat(2).HoleCards)
}

func TestModelReportsErrors(t *testing.T) {
	m, _ := newTestModel(t)

	submit(t, m, "check")
	assert.True(t, strings.HasPrefix(lastLine(m), "Error: illegal action"), lastLine(m))

	submit(t, m, "next")
	assert.Contains(t, lastLine(m), "betting round is not complete")

	submit(t, m, "7 fold")
	assert.Equal(t, "Error: nobody in seat 7", lastLine(m))

	assert.Nil(t, m.Submit("dance"))
	assert.Contains(t, lastLine(m), "unknown command")

	assert.Nil(t, m.Submit("   "))
	assert.Equal(t, "Hero", m.State().NextToAct.Name, "state survives errors")
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := m.Submit("quit")
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	assert.True(t, m.quitting)
	require.NotNil(t, next)
	assert.Empty(t, m.View())
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	view := m.View()
	assert.Contains(t, view, "PREFLOP")
	assert.Contains(t, view, "Hero to act")
	assert.Contains(t, view, "[call $2]")
	assert.Contains(t, view, "[raise min $2]")
	assert.Contains(t, view, "[Ah Kh]")
	assert.Contains(t, view, "Bob (D)")
}
