package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/logging"
	"github.com/roach88/kumihimo/internal/preview"
)

// Layout rows around the preview panes.
const (
	headerHeight = 9 // title, bar, blank, ring (4), blank, status
	footerHeight = 2 // blank, help
	paneChrome   = 2 // pane border top and bottom
	minPane      = 3
)

// =============================================================================
// Messages
// =============================================================================

// moveDoneMsg reports the end of a move started from the player.
type moveDoneMsg struct {
	move     ir.Move
	accepted bool
	err      error
}

// =============================================================================
// Config
// =============================================================================

// Config configures the player.
type Config struct {
	// Color draws strands and previews in their strand colours.
	Color bool

	// Logger receives player events. Default: discard.
	Logger *slog.Logger
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model of the player.
type Model struct {
	ctx     context.Context
	session *engine.Session
	pattern ir.Pattern
	config  Config
	styles  Styles
	logger  *slog.Logger

	cursor   int
	inFlight bool
	move     ir.Move // the move in flight
	status   string
	err      error

	spinner  spinner.Model
	progress progress.Model
	loose    viewport.Model
	tight    viewport.Model

	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a player for a session that already has a pattern loaded.
// ctx bounds every move animation.
func New(ctx context.Context, session *engine.Session, config Config) Model {
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	m := Model{
		ctx:      ctx,
		session:  session,
		pattern:  session.Pattern(),
		config:   config,
		styles:   DefaultStyles(),
		logger:   logger,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	if p, ok := session.Expected(); ok {
		m.cursor = p.Source.Position
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case moveDoneMsg:
		m.inFlight = false
		m.move = ir.Move{}
		switch {
		case msg.err != nil:
			m.err = msg.err
			m.status = fmt.Sprintf("move %s failed: %v", msg.move, msg.err)
		case !msg.accepted:
			m.status = "move dropped"
		default:
			m.err = nil
			m.status = fmt.Sprintf("moved %s", msg.move)
			m.followExpected()
		}
		m.refreshPreviews()
		return m, nil

	case spinner.TickMsg:
		if !m.inFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Input is dropped while a move animates.
	if m.inFlight {
		m.logger.Debug("input dropped while busy", "key", key)
		return m, nil
	}

	switch key {
	case "left", "h":
		m.cursor = (m.cursor + ir.RingSize - 1) % ir.RingSize
	case "right", "l":
		m.cursor = (m.cursor + 1) % ir.RingSize
	case "up", "down", "k", "j":
		m.cursor = opposite(m.cursor)
	case "tab":
		if pos, ok := legalSlot(m.session.Snapshot()); ok {
			m.cursor = pos
		}
	case "enter", " ":
		return m.activate()
	case "a":
		return m.startMove(autoplayOne(m.ctx, m.session))
	case "esc":
		if m.session.CancelSelection() {
			m.status = "selection cancelled"
		}
	case "u":
		if m.session.Undo() {
			m.status = "undone"
			m.err = nil
			m.followExpected()
			m.refreshPreviews()
		} else {
			m.status = "nothing to undo"
		}
	case "r":
		if err := m.session.Load(m.pattern); err != nil {
			m.err = err
			m.status = fmt.Sprintf("restart failed: %v", err)
			return m, nil
		}
		m.status = "restarted"
		m.err = nil
		m.followExpected()
		m.refreshPreviews()
	}
	return m, nil
}

// activate selects the strand under the cursor, or places the selected
// strand at the cursor.
func (m Model) activate() (tea.Model, tea.Cmd) {
	switch m.session.State() {
	case engine.AwaitingDestination:
		if !m.session.IsLegalDestination(m.cursor) {
			m.status = fmt.Sprintf("slot %d is not the destination", m.cursor)
			return m, nil
		}
		return m.startMove(choose(m.ctx, m.session, m.cursor))

	case engine.Ready, engine.AwaitingSelection:
		s, ok := m.session.Layout().At(m.cursor)
		if !ok {
			m.status = fmt.Sprintf("slot %d is empty", m.cursor)
			return m, nil
		}
		if !m.session.SelectStrand(s.ID) {
			m.status = fmt.Sprintf("%s cannot move now", s.ID)
			return m, nil
		}
		m.status = fmt.Sprintf("selected %s", s.ID)
		m.followExpected()

	case engine.Complete:
		m.status = "pattern complete: r restarts, u undoes"
	}
	return m, nil
}

// startMove marks the player busy and runs cmd with the spinner.
func (m Model) startMove(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if p, ok := m.session.Expected(); ok {
		m.move = p.Move()
	}
	m.inFlight = true
	m.status = ""
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// choose runs ChooseDestination off the event loop; it blocks for the
// length of the animation.
func choose(ctx context.Context, s *engine.Session, pos int) tea.Cmd {
	return func() tea.Msg {
		p, _ := s.Expected()
		accepted, err := s.ChooseDestination(ctx, pos)
		return moveDoneMsg{move: p.Move(), accepted: accepted, err: err}
	}
}

// autoplayOne plays the prescribed move through the normal select and
// choose path.
func autoplayOne(ctx context.Context, s *engine.Session) tea.Cmd {
	return func() tea.Msg {
		p, _ := s.Expected()
		n, err := engine.Autoplay(ctx, s, 1)
		return moveDoneMsg{move: p.Move(), accepted: n == 1, err: err}
	}
}

// followExpected moves the cursor to the next slot the rule wants.
func (m *Model) followExpected() {
	if pos, ok := legalSlot(m.session.Snapshot()); ok {
		m.cursor = pos
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	paneWidth := (width - 1) / 2
	paneHeight := height - headerHeight - footerHeight - paneChrome
	if paneHeight < minPane {
		paneHeight = minPane
	}
	innerWidth := paneWidth - paneChrome
	if innerWidth < 1 {
		innerWidth = 1
	}

	if !m.ready {
		m.loose = viewport.New(innerWidth, paneHeight)
		m.tight = viewport.New(innerWidth, paneHeight)
		m.ready = true
	} else {
		m.loose.Width, m.loose.Height = innerWidth, paneHeight
		m.tight.Width, m.tight.Height = innerWidth, paneHeight
	}
	m.progress.Width = width - 4
	m.refreshPreviews()
}

// refreshPreviews rebuilds both previews from the log and scrolls them so
// the latest step is centred.
func (m *Model) refreshPreviews() {
	if !m.ready {
		return
	}
	log := m.session.Log()
	opts := preview.RenderOptions{Color: m.config.Color}

	loose := preview.RenderLoose(preview.Loose(m.pattern, log), opts)
	m.loose.SetContent(loose)
	// header, initial order, then one line per step
	m.loose.SetYOffset(centredOffset(len(log)+2, m.loose.Height, lineCount(loose)))

	tight := preview.RenderTight(preview.Tight(m.pattern, log), opts)
	m.tight.SetContent(tight)
	m.tight.SetYOffset(centredOffset(len(log)+1, m.tight.Height, lineCount(tight)))
}

// centredOffset is preview.ScrollOffset in whole text lines.
func centredOffset(latest, viewport, total int) int {
	return int(preview.ScrollOffset(latest, 1, float64(viewport), float64(total)))
}

func lineCount(s string) int {
	return strings.Count(strings.TrimRight(s, "\n"), "\n") + 1
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading...\n"
	}

	snap := m.session.Snapshot()
	var b strings.Builder

	// Header
	title := m.styles.Title.Render(fmt.Sprintf("%s (%s)", m.pattern.Name, m.pattern.ID))
	fmt.Fprintf(&b, "%s  %s\n", title, snap.Progress)
	b.WriteString(m.progress.ViewAs(snap.Progress.Fraction()))
	b.WriteString("\n\n")

	// Ring
	b.WriteString(renderRing(snap, m.cursor, m.styles, m.config.Color))
	b.WriteString("\n\n")

	// Status
	b.WriteString(m.renderStatus(snap))
	b.WriteString("\n")

	// Previews
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Pane.Render(m.loose.View()),
		" ",
		m.styles.Pane.Render(m.tight.View()),
	))

	// Footer
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("←/→ move  ↑/↓ opposite  tab next  enter select/place  a auto  esc cancel  u undo  r restart  q quit"))
	return b.String()
}

func (m Model) renderStatus(snap engine.Snapshot) string {
	if m.inFlight {
		return fmt.Sprintf("%s moving %s", m.spinner.View(), m.move)
	}

	var parts []string
	parts = append(parts, m.styles.Status.Render(strings.ReplaceAll(snap.State.String(), "_", " ")))
	switch {
	case snap.State == engine.Complete:
		parts = append(parts, m.styles.Hint.Render("braid complete"))
	case snap.HasExpected && snap.State == engine.AwaitingDestination:
		parts = append(parts, m.styles.Hint.Render(fmt.Sprintf("place %s at %d", snap.Expected.Source.ID, snap.Expected.Destination)))
	case snap.HasExpected:
		parts = append(parts, m.styles.Hint.Render(fmt.Sprintf("next: %s", snap.Expected.Move())))
	}
	if m.err != nil && !errors.Is(m.err, context.Canceled) {
		parts = append(parts, m.styles.Warn.Render(m.err.Error()))
	} else if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, "  ")
}

// Cursor returns the slot under the cursor.
func (m Model) Cursor() int {
	return m.cursor
}

// Busy reports whether a move started from the player is in flight.
func (m Model) Busy() bool {
	return m.inFlight
}

// Status returns the last status message.
func (m Model) Status() string {
	return m.status
}
