// Package tui is the interactive hand-entry screen: a log of the hand, a
// sidebar with the table, and an input line for the next action.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/tracker"
)

// Model is the Bubble Tea model for entering one hand.
type Model struct {
	ctx     context.Context
	tracker *tracker.Tracker
	handID  int64
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	state       tracker.State
	loaded      bool
	gameLog     []string
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewModel creates the entry screen for a stored hand.
func NewModel(ctx context.Context, tr *tracker.Tracker, handID int64, logger *log.Logger) *Model {
	return NewModelWithOptions(ctx, tr, handID, logger, false)
}

// NewModelWithOptions creates the model; test mode captures log lines
// without touching the viewport.
func NewModelWithOptions(ctx context.Context, tr *tracker.Tracker, handID int64, logger *log.Logger, testMode bool) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, raise 10, undo, next"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		tracker:     tr,
		handID:      handID,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		gameLog:     []string{},
		focusedPane: 1,
		testMode:    testMode,
		capturedLog: []string{},
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, tr *tracker.Tracker, handID int64, logger *log.Logger) error {
	m := NewModel(ctx, tr, handID, logger)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load())
}

func (m *Model) load() tea.Cmd {
	ctx, tr, id := m.ctx, m.tracker, m.handID
	return func() tea.Msg {
		state, err := tr.Snapshot(ctx, id)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{state: state, lines: []string{
			HeaderStyle.Render(fmt.Sprintf(" Hand #%d  %s  %s ", id, state.Hand.GameType, state.Hand.Stakes)),
			StreetHeader(state.Hand.Street, state.Pot),
		}}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case quitMsg:
		m.quitting = true
		return m, tea.Quit

	case resultMsg:
		if msg.err != nil {
			m.AddLogEntry(ErrorStyle.Render("Error: " + msg.err.Error()))
		} else {
			if msg.state.Hand != nil {
				m.state = msg.state
				m.loaded = true
			}
			for _, line := range msg.lines {
				m.AddLogEntry(line)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.Submit(input); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit parses a line of input and returns the command that carries it
// out. Parse errors are logged straight away and return nil.
func (m *Model) Submit(input string) tea.Cmd {
	cmd, err := ParseCommand(input)
	if errors.Is(err, errEmpty) {
		return nil
	}
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}
	if !m.loaded && cmd.Kind != CommandQuit {
		m.AddLogEntry(InfoStyle.Render("Still loading..."))
		return nil
	}
	m.logger.Debug("Command", "input", input)
	return m.execute(cmd)
}

// State returns the last loaded hand state.
func (m *Model) State() tracker.State {
	return m.state
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane lists the seats with stacks, status and known cards.
func (m *Model) renderSidebarPane() string {
	var b strings.Builder
	if !m.loaded {
		return InfoStyle.Render("Loading hand...")
	}
	h := m.state.Hand

	b.WriteString(StreetStyle.Render(strings.ToUpper(h.Street.String())))
	b.WriteString("  ")
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", m.state.Pot)))
	b.WriteString("\n")
	if h.Board != "" {
		b.WriteString("Board: " + FormatCards(h.Board) + "\n")
	}
	b.WriteString("\n")

	for i := range h.Players {
		b.WriteString(m.renderSeat(&h.Players[i]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderSeat(p *game.Player) string {
	h := m.state.Hand
	marker := "  "
	if m.state.NextToAct != nil && m.state.NextToAct.ID == p.ID {
		marker = ToActStyle.Render("> ")
	}

	name := p.Label()
	if p.Hero {
		name += "*"
	}
	if p.Seat == h.Button {
		name += " (D)"
	}
	line := fmt.Sprintf("%d %s $%d", p.Seat, name, h.Wager(p).Remaining)

	switch {
	case h.HasFolded(p):
		line = FoldedStyle.Render(line)
	case h.IsAllIn(p):
		line += " " + WarningStyle.Render("all-in")
	}
	if p.HoleCards != "" {
		line += " " + FormatCards(p.HoleCards)
	}
	return marker + line
}

// renderActionPane shows who is to act, their options, and the input line.
func (m *Model) renderActionPane() string {
	var b strings.Builder

	switch {
	case !m.loaded:
	case m.state.HandOver:
		b.WriteString(SuccessStyle.Render("Hand over"))
		b.WriteString("\n")
	case m.state.NextToAct != nil:
		b.WriteString(ActionsStyle.Render(fmt.Sprintf("%s to act: ", m.state.NextToAct.Label())))
		b.WriteString(renderLegal(m.state))
		b.WriteString("\n")
	case m.state.Hand.Street == game.River:
		b.WriteString(SuccessStyle.Render("River complete"))
		if m.state.Showdown {
			b.WriteString(InfoStyle.Render(" - showdown, record cards with: cards <seat> <cards>"))
		}
		b.WriteString("\n")
	default:
		b.WriteString(SuccessStyle.Render("Round complete - next to deal the " + m.state.Hand.Street.Next().String()))
		b.WriteString("\n")
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • help • Ctrl+C to quit"))
	}
	return b.String()
}

func renderLegal(s tracker.State) string {
	var parts []string
	for _, a := range s.Legal {
		switch a {
		case game.Fold:
			parts = append(parts, ErrorStyle.Render("[fold]"))
		case game.Check:
			parts = append(parts, SuccessStyle.Render("[check]"))
		case game.Call:
			parts = append(parts, SuccessStyle.Render(fmt.Sprintf("[call $%d]", s.Wager.CallAmount)))
		case game.Raise:
			parts = append(parts, WarningStyle.Render(fmt.Sprintf("[raise min $%d]", s.MinimumRaise)))
		}
	}
	if len(parts) == 0 {
		return ErrorStyle.Render("[no actions available]")
	}
	return strings.Join(parts, " ")
}

// AddLogEntry appends a line to the hand log and scrolls to it.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// CapturedLog returns the log lines seen in test mode.
func (m *Model) CapturedLog() []string {
	if !m.testMode {
		return nil
	}
	out := make([]string, len(m.capturedLog))
	copy(out, m.capturedLog)
	return out
}

// FormatAction describes a in hand-history prose, e.g. "Hero raises to $6".
func FormatAction(h *game.Hand, a game.Action) string {
	name := fmt.Sprintf("player %d", a.PlayerID)
	if p := h.Player(a.PlayerID); p != nil {
		name = p.Label()
	}

	var text string
	switch a.Type {
	case game.Call:
		text = fmt.Sprintf("%s calls $%d", name, a.Amount)
	case game.Raise:
		text = fmt.Sprintf("%s raises to $%d", name, a.Amount)
	case game.Check:
		text = name + " checks"
	case game.Fold:
		text = name + " folds"
	default:
		text = fmt.Sprintf("%s %s $%d", name, a.Type, a.Amount)
	}
	if a.AutoFilled {
		return InfoStyle.Render(text + " (auto)")
	}
	return text
}

func StreetHeader(street game.Street, pot int) string {
	return StreetStyle.Render(fmt.Sprintf("*** %s *** ($%d)", strings.ToUpper(street.String()), pot))
}

// FormatCards colours a stored card string, e.g. "As,Kd".
func FormatCards(s string) string {
	if s == "" {
		return ""
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		if strings.HasSuffix(c, "h") || strings.HasSuffix(c, "d") {
			out = append(out, RedCardStyle.Render(c))
		} else {
			out = append(out, BlackCardStyle.Render(c))
		}
	}
	return "[" + strings.Join(out, " ") + "]"
}
