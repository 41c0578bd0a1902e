package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/rules"
	"github.com/roach88/kumihimo/internal/tui"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Color    bool
	Delay    time.Duration
	Database string

	// AltScreen draws on the alternate screen buffer. Tests turn it off.
	AltScreen bool
}

// PlayResult summarises an interactive session after the player exits.
type PlayResult struct {
	Pattern    string `json:"pattern"`
	Session    string `json:"session"`
	Moves      int    `json:"moves"`
	Progress   string `json:"progress"`
	State      string `json:"state"`
	Transcript string `json:"transcript,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts, AltScreen: true}

	cmd := &cobra.Command{
		Use:   "play <pattern-id>",
		Short: "Braid a pattern interactively",
		Long: `Open the interactive player for a pattern.

Move the cursor around the ring, select the strand the rule prescribes and
place it on its destination. Each move animates before it is committed;
input is ignored until it lands. The loose and tight previews follow the
latest step. With --db the move log is archived when the player exits.

Examples:
  kumihimo play kongo_gumi_8
  kumihimo play kaku_yatsu_gumi_8 --color --db ./kumihimo.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Color, "color", false, "draw strands and previews in their colours")
	cmd.Flags().DurationVar(&opts.Delay, "delay", engine.DefaultAnimationDuration, "animation length of one move")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the move log in this SQLite database on exit")

	return cmd
}

func runPlay(opts *PlayOptions, patternID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger()

	if opts.Delay < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--delay must not be negative, got %s", opts.Delay))
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	cat, err := loadCatalog(ctx, opts.RootOptions)
	if err != nil {
		return catalogExitError(formatter, err)
	}

	registry := rules.DefaultRegistry()
	p, err := resolvePattern(cat, registry, patternID)
	if err != nil {
		return unknownPatternExitError(formatter, patternID, err)
	}

	session := engine.New(
		engine.WithRegistry(registry),
		engine.WithAnimator(engine.DelayAnimator{Duration: opts.Delay}),
		engine.WithLogger(logger),
	)
	if err := session.Load(p); err != nil {
		_ = formatter.Error(ErrCodeUnknownPattern, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load pattern", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, closing player", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("player starting", "session", session.ID(), "pattern", p.ID)
	snap, err := tui.Run(ctx, session, tui.RunOptions{
		Config:    tui.Config{Color: opts.Color, Logger: logger},
		Input:     cmd.InOrStdin(),
		Output:    cmd.OutOrStdout(),
		AltScreen: opts.AltScreen,
	})
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "player error", err)
	}
	logger.Info("player stopped", "session", snap.SessionID, "moves", len(snap.Log), "state", snap.State.String())

	result := PlayResult{
		Pattern:  p.ID,
		Session:  snap.SessionID,
		Moves:    len(snap.Log),
		Progress: snap.Progress.String(),
		State:    snap.State.String(),
	}

	if opts.Database != "" && len(snap.Log) > 0 {
		// The player context may already be cancelled by a signal.
		id, err := archiveSession(context.WithoutCancel(ctx), opts.Database, p, snap)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreWrite, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to archive transcript", err)
		}
		result.Transcript = id
		logger.Info("transcript archived", "session", snap.SessionID, "transcript", id, "db", opts.Database)
	}

	if opts.Format == "json" {
		return writeIndented(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result, Session: result.Session})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d move(s), %s, %s\n", result.Pattern, result.Moves, result.Progress, result.State)
	if result.Transcript != "" {
		fmt.Fprintf(w, "✓ Transcript archived: %s\n", result.Transcript)
	}
	return nil
}
