package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/preview"
	"github.com/roach88/kumihimo/internal/rules"
)

// Canvas defaults, in pixels, used for preview geometry.
const (
	DefaultCanvasWidth = 400
	DefaultViewport    = 300
)

// AutoOptions holds flags for the auto command.
type AutoOptions struct {
	*RootOptions
	Steps    int
	Width    float64
	Viewport float64
	Color    bool
	Database string
}

// PreviewSummary describes one reconstructed preview.
type PreviewSummary struct {
	Model         string  `json:"model"`
	Rows          int     `json:"rows"`
	Skips         []int   `json:"skips"`
	ThreadWidth   float64 `json:"thread_width"`
	SegmentHeight float64 `json:"segment_height"`
	CanvasHeight  float64 `json:"canvas_height"`
	Scroll        float64 `json:"scroll"`
}

// AutoResult holds the outcome of an autoplay run.
type AutoResult struct {
	Pattern    string         `json:"pattern"`
	Session    string         `json:"session"`
	Applied    int            `json:"applied"`
	Progress   string         `json:"progress"`
	State      string         `json:"state"`
	Moves      []string       `json:"moves"`
	Final      []ir.Strand    `json:"final"`
	Loose      PreviewSummary `json:"loose"`
	Tight      PreviewSummary `json:"tight"`
	Transcript string         `json:"transcript,omitempty"`
}

// NewAutoCommand creates the auto command.
func NewAutoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AutoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "auto <pattern-id>",
		Short: "Play a pattern automatically and print its previews",
		Long: `Play a pattern by applying the moves its rule prescribes.

Each move goes through the same select and choose path as interactive
play. After the run the loose and tight previews are printed. With --db
the move log is archived as a transcript for later preview and verify.

Examples:
  kumihimo auto kongo_gumi_8
  kumihimo auto kaku_yatsu_gumi_8 --steps 4 --color
  kumihimo auto kongo_gumi_8 --db ./kumihimo.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuto(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "number of moves to play (0 plays to completion)")
	cmd.Flags().Float64Var(&opts.Width, "width", DefaultCanvasWidth, "preview canvas width in pixels")
	cmd.Flags().Float64Var(&opts.Viewport, "viewport", DefaultViewport, "preview viewport height in pixels")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "draw previews in strand colours")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the move log in this SQLite database")

	return cmd
}

func runAuto(opts *AutoOptions, patternID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	if opts.Steps < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--steps must not be negative, got %d", opts.Steps))
	}
	if opts.Width <= 0 || opts.Viewport <= 0 {
		return NewExitError(ExitCommandError, "--width and --viewport must be positive")
	}

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
		engine.WithLogger(opts.Logger()),
	)
	if err := session.Load(p); err != nil {
		_ = formatter.Error(ErrCodeUnknownPattern, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load pattern", err)
	}

	n := opts.Steps
	if n == 0 || n > p.TotalSteps {
		n = p.TotalSteps
	}
	applied, err := engine.Autoplay(ctx, session, n)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), map[string]any{"applied": applied})
		return WrapExitError(ExitFailure, "autoplay stopped", err)
	}
	formatter.VerboseLog("Applied %d move(s) to %s", applied, p.ID)

	snap := session.Snapshot()
	loose := preview.Loose(p, snap.Log)
	tight := preview.Tight(p, snap.Log)

	result := AutoResult{
		Pattern:  p.ID,
		Session:  snap.SessionID,
		Applied:  applied,
		Progress: snap.Progress.String(),
		State:    snap.State.String(),
		Moves:    moveStrings(snap.Log),
		Final:    snap.Layout.ByPosition(),
		Loose:    summarizeLoose(loose, opts.Width, opts.Viewport),
		Tight:    summarizeTight(tight, opts.Width, opts.Viewport),
	}

	if opts.Database != "" {
		id, err := archiveSession(ctx, opts.Database, p, snap)
		if err != nil {
			_ = formatter.Error(ErrCodeStoreWrite, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to archive transcript", err)
		}
		result.Transcript = id
		opts.Logger().Info("transcript archived", "session", snap.SessionID, "transcript", id, "db", opts.Database)
	}

	if opts.Format == "json" {
		return writeIndented(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result, Session: result.Session})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d move(s) applied, %s, %s\n", result.Pattern, result.Applied, result.Progress, result.State)
	if result.Transcript != "" {
		fmt.Fprintf(w, "Transcript: %s\n", result.Transcript)
	}
	fmt.Fprintln(w)
	renderOpts := preview.RenderOptions{Color: opts.Color}
	fmt.Fprint(w, preview.RenderLoose(loose, renderOpts))
	fmt.Fprintln(w)
	fmt.Fprint(w, preview.RenderTight(tight, renderOpts))
	return nil
}

func moveStrings(log ir.MoveLog) []string {
	out := make([]string, len(log))
	for i, m := range log {
		out[i] = m.String()
	}
	return out
}

func summarizeLoose(d preview.LooseDiagram, width, viewport float64) PreviewSummary {
	g := d.Geometry(width)
	return PreviewSummary{
		Model:         "loose",
		Rows:          len(d.Steps),
		Skips:         nonNil(d.Skips()),
		ThreadWidth:   g.ThreadWidth,
		SegmentHeight: g.SegmentHeight,
		CanvasHeight:  g.CanvasHeight,
		Scroll:        d.Scroll(width, viewport),
	}
}

func summarizeTight(d preview.TightDiagram, width, viewport float64) PreviewSummary {
	g := d.Geometry(width)
	return PreviewSummary{
		Model:         "tight",
		Rows:          len(d.Rows),
		Skips:         nonNil(d.Skips()),
		ThreadWidth:   g.ThreadWidth,
		SegmentHeight: g.SegmentHeight,
		CanvasHeight:  g.CanvasHeight,
		Scroll:        d.Scroll(width, viewport),
	}
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
