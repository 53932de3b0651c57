package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/tracker"
)

// CommandKind is what a line of input asks for.
type CommandKind int

const (
	CommandAction CommandKind = iota
	CommandUndo
	CommandNext
	CommandBoard
	CommandCards
	CommandNote
	CommandHelp
	CommandQuit
)

// Command is a parsed line of input.
type Command struct {
	Kind    CommandKind
	Seat    int  // Acting seat, or the seat whose cards are set
	HasSeat bool // Seat was given; otherwise the next player to act
	Action  game.ActionType
	Amount  int
	Text    string // Cards or note text
}

var errEmpty = errors.New("empty command")

// ParseCommand reads one line of input:
//
//	[seat] fold | check | call [n] | raise n
//	undo | next | board <cards> | cards <seat> <cards> | note <text> | help | quit
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return Command{}, errEmpty
	}

	var cmd Command
	if seat, err := strconv.Atoi(fields[0]); err == nil {
		cmd.Seat, cmd.HasSeat = seat, true
		fields = fields[1:]
		if len(fields) == 0 {
			return Command{}, fmt.Errorf("seat %d: missing action", seat)
		}
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]
	rest := strings.TrimSpace(strings.Join(args, " "))

	if !cmd.HasSeat {
		switch verb {
		case "undo", "u":
			return Command{Kind: CommandUndo}, nil
		case "next", "n":
			return Command{Kind: CommandNext}, nil
		case "board":
			return Command{Kind: CommandBoard, Text: rest}, nil
		case "note":
			return Command{Kind: CommandNote, Text: rest}, nil
		case "help", "?":
			return Command{Kind: CommandHelp}, nil
		case "quit", "exit", "q":
			return Command{Kind: CommandQuit}, nil
		case "cards":
			if len(args) < 1 {
				return Command{}, fmt.Errorf("usage: cards <seat> <cards>")
			}
			seat, err := strconv.Atoi(args[0])
			if err != nil {
				return Command{}, fmt.Errorf("invalid seat %q", args[0])
			}
			return Command{Kind: CommandCards, Seat: seat, HasSeat: true, Text: strings.Join(args[1:], " ")}, nil
		}
	}

	action, err := game.ParseActionType(verb)
	if err != nil {
		return Command{}, fmt.Errorf("unknown command %q (try help)", verb)
	}
	cmd.Kind = CommandAction
	cmd.Action = action

	switch action {
	case game.Call, game.Raise:
		if len(args) > 0 {
			n, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
			if err != nil || n <= 0 {
				return Command{}, fmt.Errorf("invalid amount %q", args[0])
			}
			cmd.Amount = n
		} else if action == game.Raise {
			return Command{}, fmt.Errorf("usage: raise <amount>")
		}
	}
	return cmd, nil
}

// resultMsg carries the outcome of a tracker call back into the model.
type resultMsg struct {
	state tracker.State
	lines []string
	err   error
}

type quitMsg struct{}

// execute runs cmd against the tracker off the UI goroutine.
func (m *Model) execute(cmd Command) tea.Cmd {
	if cmd.Kind == CommandQuit {
		return func() tea.Msg { return quitMsg{} }
	}
	if cmd.Kind == CommandHelp {
		return func() tea.Msg { return resultMsg{state: m.state, lines: helpLines()} }
	}

	ctx, tr, handID := m.ctx, m.tracker, m.handID
	current := m.state
	return func() tea.Msg {
		lines, err := apply(ctx, tr, handID, current, cmd)
		if err != nil {
			return resultMsg{state: current, err: err}
		}
		state, err := tr.Snapshot(ctx, handID)
		if err != nil {
			return resultMsg{state: current, err: err}
		}
		return resultMsg{state: state, lines: lines}
	}
}

func apply(ctx context.Context, tr *tracker.Tracker, handID int64, current tracker.State, cmd Command) ([]string, error) {
	h := current.Hand
	switch cmd.Kind {
	case CommandAction:
		p := current.NextToAct
		if cmd.HasSeat {
			p = h.PlayerAtSeat(cmd.Seat)
			if p == nil {
				return nil, fmt.Errorf("nobody in seat %d", cmd.Seat)
			}
		}
		if p == nil {
			return nil, fmt.Errorf("nobody to act; use next")
		}
		appended, err := tr.Record(ctx, handID, p.ID, cmd.Action, cmd.Amount)
		if err != nil {
			return nil, err
		}
		lines := make([]string, len(appended))
		for i, a := range appended {
			lines[i] = FormatAction(h, a)
		}
		return lines, nil

	case CommandUndo:
		removed, err := tr.Undo(ctx, handID)
		if err != nil {
			return nil, err
		}
		if len(removed) == 0 {
			return []string{InfoStyle.Render("Nothing to undo")}, nil
		}
		lines := make([]string, len(removed))
		for i, a := range removed {
			lines[i] = WarningStyle.Render("Undo: ") + FormatAction(h, a)
		}
		return lines, nil

	case CommandNext:
		next, err := tr.AdvanceStreet(ctx, handID)
		if err != nil {
			return nil, err
		}
		return []string{StreetHeader(next.Street, next.PotSize(next.Street))}, nil

	case CommandBoard:
		next, err := tr.SetBoard(ctx, handID, cmd.Text)
		if err != nil {
			return nil, err
		}
		return []string{"Board: " + FormatCards(next.Board)}, nil

	case CommandCards:
		p := h.PlayerAtSeat(cmd.Seat)
		if p == nil {
			return nil, fmt.Errorf("nobody in seat %d", cmd.Seat)
		}
		next, err := tr.SetHoleCards(ctx, handID, p.ID, cmd.Text)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%s: %s", p.Label(), FormatCards(next.Player(p.ID).HoleCards))}, nil

	case CommandNote:
		if _, err := tr.Annotate(ctx, handID, tracker.Annotation{Note: &cmd.Text}); err != nil {
			return nil, err
		}
		return []string{InfoStyle.Render("Note saved")}, nil
	}
	return nil, fmt.Errorf("unsupported command")
}

func helpLines() []string {
	return []string{
		InfoStyle.Render("Actions (next to act, or prefix a seat): fold, check, call [n], raise n"),
		InfoStyle.Render("undo, next, board <cards>, cards <seat> <cards>, note <text>, quit"),
	}
}
