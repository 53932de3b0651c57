package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/stakes"
	"github.com/lox/handtracker/internal/tracker"
	"github.com/lox/handtracker/internal/tui"
)

// HandCmd groups the hand commands.
type HandCmd struct {
	New    HandNewCmd    `cmd:"" help:"Start a hand"`
	List   HandListCmd   `cmd:"" help:"List hands"`
	Show   HandShowCmd   `cmd:"" help:"Show a hand's state"`
	Act    HandActCmd    `cmd:"" help:"Record an action"`
	Undo   HandUndoCmd   `cmd:"" help:"Undo the last action"`
	Next   HandNextCmd   `cmd:"" help:"Advance to the next street"`
	Cards  HandCardsCmd  `cmd:"" help:"Set a player's hole cards"`
	Board  HandBoardCmd  `cmd:"" help:"Set the board"`
	Note   HandNoteCmd   `cmd:"" help:"Set a hand's note or result"`
	Delete HandDeleteCmd `cmd:"" help:"Delete a hand"`
	Export HandExportCmd `cmd:"" help:"Export a hand as a PHH file"`
}

type HandNewCmd struct {
	Session    int64    `help:"Session the hand belongs to"`
	Players    []string `name:"player" short:"p" sep:"none" required:"" help:"Player as SEAT:NAME[:STACK]; repeat for each seat"`
	Hero       *int     `help:"Seat of the hero"`
	HeroCards  string   `name:"hero-cards" help:"Hero's hole cards, e.g. AhKh"`
	Button     int      `short:"b" required:"" help:"Button seat"`
	SmallBlind int      `name:"sb" required:"" help:"Small blind seat"`
	BigBlind   int      `name:"bb" required:"" help:"Big blind seat"`
	Stakes     string   `short:"s" help:"Blinds as small,big (default from session or config)"`
	Straddle   string   `help:"Straddle as SEAT:AMOUNT"`
	GameType   string   `name:"game-type" help:"Game type, e.g. NLHE"`
	Order      string   `help:"Action order: seat or positional (default from config)"`
	Note       string   `help:"Free-form note"`
}

func (c *HandNewCmd) Run(g *Globals) error {
	req, err := c.request()
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.tracker.StartHand(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Hand %d started\n", h.ID)
	return printState(g.stdout(), tracker.NewState(h))
}

func (c *HandNewCmd) request() (tracker.NewHand, error) {
	req := tracker.NewHand{
		SessionID:  c.Session,
		Button:     c.Button,
		SmallBlind: c.SmallBlind,
		BigBlind:   c.BigBlind,
		GameType:   c.GameType,
		Note:       c.Note,
	}

	for _, arg := range c.Players {
		p, err := parsePlayer(arg)
		if err != nil {
			return req, err
		}
		req.Players = append(req.Players, p)
	}

	if c.Hero != nil {
		found := false
		for i := range req.Players {
			if req.Players[i].Seat == *c.Hero {
				req.Players[i].Hero = true
				req.Players[i].HoleCards = c.HeroCards
				found = true
			}
		}
		if !found {
			return req, fmt.Errorf("hero seat %d has no player", *c.Hero)
		}
	} else if c.HeroCards != "" {
		return req, fmt.Errorf("--hero-cards needs --hero")
	}

	st, err := stakes.Parse(c.Stakes)
	if err != nil {
		return req, err
	}
	req.Stakes = st

	if c.Straddle != "" {
		s, err := parseStraddle(c.Straddle)
		if err != nil {
			return req, err
		}
		req.Straddle = s
	}

	if c.Order != "" {
		o, err := game.ParseOrderPolicy(c.Order)
		if err != nil {
			return req, err
		}
		req.Order = &o
	}
	return req, nil
}

// parsePlayer reads SEAT:NAME[:STACK].
func parsePlayer(arg string) (game.Player, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return game.Player{}, fmt.Errorf("invalid player %q: want SEAT:NAME[:STACK]", arg)
	}
	seat, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return game.Player{}, fmt.Errorf("invalid player %q: bad seat", arg)
	}
	p := game.Player{Seat: seat, Name: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		stack, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(parts[2]), "$"))
		if err != nil || stack < 0 {
			return game.Player{}, fmt.Errorf("invalid player %q: bad stack", arg)
		}
		p.InitialStack = stack
	}
	return p, nil
}

// parseStraddle reads SEAT:AMOUNT.
func parseStraddle(arg string) (*game.StraddleConfig, error) {
	seat, amount, ok := strings.Cut(arg, ":")
	if !ok {
		return nil, fmt.Errorf("invalid straddle %q: want SEAT:AMOUNT", arg)
	}
	s, err := strconv.Atoi(strings.TrimSpace(seat))
	if err != nil {
		return nil, fmt.Errorf("invalid straddle %q: bad seat", arg)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(amount), "$"))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid straddle %q: bad amount", arg)
	}
	return &game.StraddleConfig{Seat: s, Amount: n}, nil
}

type HandListCmd struct {
	Session int64 `help:"Only list hands from this session"`
}

func (c *HandListCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	hands, err := a.tracker.Hands(ctx, c.Session)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		fmt.Fprintln(g.stdout(), "No hands")
		return nil
	}
	fmt.Fprintln(g.stdout(), renderHandTable(hands))
	return nil
}

type HandShowCmd struct {
	ID   int64 `arg:"" help:"Hand ID"`
	JSON bool  `help:"Print the state as JSON"`
}

func (c *HandShowCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.tracker.Snapshot(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("hand %d: %w", c.ID, err)
	}
	if c.JSON {
		enc := json.NewEncoder(g.stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}
	return printState(g.stdout(), state)
}

type HandActCmd struct {
	ID     int64  `arg:"" help:"Hand ID"`
	Action string `arg:"" help:"fold, check, call or raise"`
	Amount int    `arg:"" optional:"" help:"Raise-to amount, or call amount (default: the full call)"`
	Seat   *int   `help:"Acting seat (default: next to act)"`
}

func (c *HandActCmd) Run(g *Globals) error {
	typ, err := game.ParseActionType(c.Action)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.tracker.Hand(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("hand %d: %w", c.ID, err)
	}
	p := h.NextToAct()
	if c.Seat != nil {
		p = h.PlayerAtSeat(*c.Seat)
		if p == nil {
			return fmt.Errorf("nobody in seat %d", *c.Seat)
		}
	}
	if p == nil {
		return fmt.Errorf("nobody to act; advance the street")
	}

	appended, err := a.tracker.Record(ctx, c.ID, p.ID, typ, c.Amount)
	if err != nil {
		return err
	}
	for _, act := range appended {
		fmt.Fprintln(g.stdout(), tui.FormatAction(h, act))
	}
	return nil
}

type HandUndoCmd struct {
	ID int64 `arg:"" help:"Hand ID"`
}

func (c *HandUndoCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.tracker.Hand(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("hand %d: %w", c.ID, err)
	}
	removed, err := a.tracker.Undo(ctx, c.ID)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Fprintln(g.stdout(), "Nothing to undo")
		return nil
	}
	for _, act := range removed {
		fmt.Fprintln(g.stdout(), "Undo: "+tui.FormatAction(h, act))
	}
	return nil
}

type HandNextCmd struct {
	ID int64 `arg:"" help:"Hand ID"`
}

func (c *HandNextCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.tracker.AdvanceStreet(ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.stdout(), tui.StreetHeader(h.Street, h.PotSize(h.Street)))
	return nil
}

type HandCardsCmd struct {
	ID    int64  `arg:"" help:"Hand ID"`
	Seat  int    `arg:"" help:"Player's seat"`
	Cards string `arg:"" optional:"" help:"Two cards, e.g. AsKd; empty clears them"`
}

func (c *HandCardsCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.tracker.Hand(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("hand %d: %w", c.ID, err)
	}
	p := h.PlayerAtSeat(c.Seat)
	if p == nil {
		return fmt.Errorf("nobody in seat %d", c.Seat)
	}
	h, err = a.tracker.SetHoleCards(ctx, c.ID, p.ID, c.Cards)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "%s: %s\n", p.Label(), tui.FormatCards(h.Player(p.ID).HoleCards))
	return nil
}

type HandBoardCmd struct {
	ID    int64  `arg:"" help:"Hand ID"`
	Cards string `arg:"" optional:"" help:"Up to five cards, e.g. QhJh2c"`
}

func (c *HandBoardCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := a.tracker.SetBoard(ctx, c.ID, c.Cards)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Board: %s\n", tui.FormatCards(h.Board))
	return nil
}

type HandNoteCmd struct {
	ID         int64   `arg:"" help:"Hand ID"`
	Note       *string `help:"Free-form note"`
	ProfitLoss *int    `name:"profit-loss" help:"Hero's net result"`
}

func (c *HandNoteCmd) Run(g *Globals) error {
	if c.Note == nil && c.ProfitLoss == nil {
		return fmt.Errorf("nothing to change: pass --note or --profit-loss")
	}

	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.tracker.Annotate(ctx, c.ID, tracker.Annotation{Note: c.Note, ProfitLoss: c.ProfitLoss}); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Hand %d updated\n", c.ID)
	return nil
}

type HandDeleteCmd struct {
	ID int64 `arg:"" help:"Hand ID"`
}

func (c *HandDeleteCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.DeleteHand(ctx, c.ID); err != nil {
		return fmt.Errorf("hand %d: %w", c.ID, err)
	}
	fmt.Fprintf(g.stdout(), "Hand %d deleted\n", c.ID)
	return nil
}

type HandExportCmd struct {
	ID     int64  `arg:"" help:"Hand ID"`
	Output string `short:"o" help:"Output file, or - for stdout (default <export dir>/hand-<id>.phh)"`
}

func (c *HandExportCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Output == "-" {
		return a.tracker.RenderHand(ctx, c.ID, g.stdout())
	}
	path := c.Output
	if path == "" {
		path = filepath.Join(a.cfg.Export.Dir, fmt.Sprintf("hand-%d.phh", c.ID))
	}
	if err := a.tracker.ExportHand(ctx, c.ID, path); err != nil {
		return fmt.Errorf("hand %d: %w", c.ID, err)
	}
	fmt.Fprintf(g.stdout(), "Exported hand %d to %s\n", c.ID, path)
	return nil
}

// printState writes a short text summary of a hand.
func printState(w io.Writer, s tracker.State) error {
	h := s.Hand
	fmt.Fprintf(w, "Hand %d  %s %s  %s  pot $%d\n", h.ID, h.GameType, h.Stakes, strings.ToUpper(h.Street.String()), s.Pot)
	if h.Board != "" {
		fmt.Fprintf(w, "Board: %s\n", tui.FormatCards(h.Board))
	}
	for _, p := range h.Players {
		var tags []string
		if p.Seat == h.Button {
			tags = append(tags, "button")
		}
		if p.Hero {
			tags = append(tags, "hero")
		}
		if h.HasFolded(&p) {
			tags = append(tags, "folded")
		} else if h.IsAllIn(&p) {
			tags = append(tags, "all-in")
		}
		line := fmt.Sprintf("  %d  %-12s $%d", p.Seat, p.Label(), p.InitialStack)
		if p.HoleCards != "" {
			line += " " + tui.FormatCards(p.HoleCards)
		}
		if len(tags) > 0 {
			line += " (" + strings.Join(tags, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}

	switch {
	case s.HandOver:
		fmt.Fprintln(w, "Hand over")
	case s.NextToAct != nil:
		legal := make([]string, len(s.Legal))
		for i, t := range s.Legal {
			legal[i] = t.String()
		}
		fmt.Fprintf(w, "%s to act: %s", s.NextToAct.Label(), strings.Join(legal, ", "))
		if s.Wager.CallAmount > 0 {
			fmt.Fprintf(w, " (call $%d, raise min $%d)", s.Wager.CallAmount, s.MinimumRaise)
		}
		fmt.Fprintln(w)
	case s.RoundComplete && h.Street != game.River:
		fmt.Fprintln(w, "Betting round complete")
	}
	return nil
}
