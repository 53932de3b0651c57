package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/stakes"
	"github.com/lox/handtracker/internal/store"
)

// SessionCmd groups the session commands.
type SessionCmd struct {
	New    SessionNewCmd    `cmd:"" help:"Start a session"`
	List   SessionListCmd   `cmd:"" help:"List sessions"`
	Show   SessionShowCmd   `cmd:"" help:"Show a session and its hands"`
	Edit   SessionEditCmd   `cmd:"" help:"Change a session"`
	Delete SessionDeleteCmd `cmd:"" help:"Delete a session; its hands are kept"`
	Export SessionExportCmd `cmd:"" help:"Export a session's hands as a PHH session file"`
}

type SessionNewCmd struct {
	Date     time.Time `format:"2006-01-02" help:"Session date (default today)"`
	Location string    `short:"l" help:"Where the session is played"`
	Stakes   string    `short:"s" help:"Blinds as small,big (default from config)"`
	GameType string    `name:"game-type" help:"Game type, e.g. NLHE"`
	Note     string    `help:"Free-form note"`
}

func (c *SessionNewCmd) Run(g *Globals) error {
	st, err := stakes.Parse(c.Stakes)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sess := &store.Session{
		Date:     c.Date,
		Location: c.Location,
		Stakes:   st,
		GameType: c.GameType,
		Note:     c.Note,
	}
	if err := a.tracker.NewSession(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Session %d started (%s %s)\n", sess.ID, sess.GameType, sess.Stakes)
	return nil
}

type SessionListCmd struct{}

func (c *SessionListCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.tracker.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(g.stdout(), "No sessions")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Date.Format("2006-01-02"),
			s.Location,
			s.GameType,
			s.Stakes.String(),
			s.Note,
		})
	}
	fmt.Fprintln(g.stdout(), renderTable([]string{"ID", "Date", "Location", "Game", "Stakes", "Note"}, rows))
	return nil
}

type SessionShowCmd struct {
	ID int64 `arg:"" help:"Session ID"`
}

func (c *SessionShowCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.tracker.Session(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("session %d: %w", c.ID, err)
	}
	hands, err := a.tracker.Hands(ctx, c.ID)
	if err != nil {
		return err
	}

	w := g.stdout()
	fmt.Fprintf(w, "Session %d  %s  %s %s", sess.ID, sess.Date.Format("2006-01-02"), sess.GameType, sess.Stakes)
	if sess.Location != "" {
		fmt.Fprintf(w, "  @ %s", sess.Location)
	}
	fmt.Fprintln(w)
	if sess.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", sess.Note)
	}
	fmt.Fprintf(w, "Sync ID: %s\n", sess.SyncID)

	if len(hands) == 0 {
		fmt.Fprintln(w, "No hands")
		return nil
	}
	fmt.Fprintln(w, renderHandTable(hands))
	return nil
}

type SessionEditCmd struct {
	ID       int64      `arg:"" help:"Session ID"`
	Date     *time.Time `format:"2006-01-02" help:"New session date"`
	Location *string    `short:"l" help:"New location"`
	Stakes   *string    `short:"s" help:"New blinds as small,big"`
	GameType *string    `name:"game-type" help:"New game type"`
	Note     *string    `help:"New note"`
}

func (c *SessionEditCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.tracker.Session(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("session %d: %w", c.ID, err)
	}
	if c.Date != nil {
		sess.Date = *c.Date
	}
	if c.Location != nil {
		sess.Location = *c.Location
	}
	if c.Stakes != nil {
		st, err := stakes.Parse(*c.Stakes)
		if err != nil {
			return err
		}
		sess.Stakes = st
	}
	if c.GameType != nil {
		sess.GameType = *c.GameType
	}
	if c.Note != nil {
		sess.Note = *c.Note
	}
	if err := a.tracker.UpdateSession(ctx, sess); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "Session %d updated\n", sess.ID)
	return nil
}

type SessionDeleteCmd struct {
	ID int64 `arg:"" help:"Session ID"`
}

func (c *SessionDeleteCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tracker.DeleteSession(ctx, c.ID); err != nil {
		return fmt.Errorf("session %d: %w", c.ID, err)
	}
	fmt.Fprintf(g.stdout(), "Session %d deleted\n", c.ID)
	return nil
}

type SessionExportCmd struct {
	ID     int64  `arg:"" help:"Session ID"`
	Output string `short:"o" type:"path" help:"Output file (default <export dir>/session-<id>.phhs)"`
}

func (c *SessionExportCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx, openOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	path := c.Output
	if path == "" {
		path = filepath.Join(a.cfg.Export.Dir, fmt.Sprintf("session-%d.phhs", c.ID))
	}
	n, err := a.tracker.ExportSession(ctx, c.ID, path)
	if err != nil {
		return fmt.Errorf("session %d: %w", c.ID, err)
	}
	fmt.Fprintf(g.stdout(), "Exported %d hands to %s\n", n, path)
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func renderHandTable(hands []*game.Hand) string {
	rows := make([][]string, 0, len(hands))
	for _, h := range hands {
		hero := ""
		if p := h.Hero(); p != nil {
			hero = p.HoleCards
		}
		rows = append(rows, []string{
			strconv.FormatInt(h.ID, 10),
			h.Timestamp.Format("15:04"),
			h.Stakes.String(),
			h.Street.String(),
			strconv.Itoa(h.PotSize(h.Street)),
			hero,
			h.Board,
			strconv.Itoa(h.ProfitLoss),
		})
	}
	return renderTable([]string{"ID", "Time", "Stakes", "Street", "Pot", "Hero", "Board", "P/L"}, rows)
}
