package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/kumihimo/internal/engine"
)

// RunOptions selects the terminal the player runs on.
type RunOptions struct {
	Config

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer

	// AltScreen draws on the alternate screen buffer.
	AltScreen bool
}

// Run plays session interactively until the user quits or ctx is done,
// and returns the session as it was left.
func Run(ctx context.Context, session *engine.Session, opts RunOptions) (engine.Snapshot, error) {
	if session.State() == engine.Idle {
		return engine.Snapshot{}, fmt.Errorf("run player: no pattern loaded")
	}

	// Cancelling ctx on return aborts a move still animating.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	program := tea.NewProgram(New(ctx, session, opts.Config), programOpts...)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return session.Snapshot(), fmt.Errorf("run player: %w", err)
	}

	cancel()
	return waitIdle(session), nil
}

// waitIdle returns a snapshot once no move is in flight.
func waitIdle(session *engine.Session) engine.Snapshot {
	for {
		snap := session.Snapshot()
		if !snap.Busy {
			return snap
		}
		// The animator honours the cancelled context, so this is brief.
		time.Sleep(10 * time.Millisecond)
	}
}
