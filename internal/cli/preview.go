package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kumihimo/internal/catalog"
	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/preview"
	"github.com/roach88/kumihimo/internal/store"
)

// Preview models accepted by --model.
var previewModels = []string{"both", "loose", "tight"}

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Database   string
	Transcript string
	Model      string
	Width      float64
	Viewport   float64
	Color      bool
}

// PreviewResult holds the previews of one archived transcript.
type PreviewResult struct {
	Transcript string          `json:"transcript"`
	Pattern    string          `json:"pattern"`
	Moves      int             `json:"moves"`
	Loose      *PreviewSummary `json:"loose,omitempty"`
	Tight      *PreviewSummary `json:"tight,omitempty"`
	Text       string          `json:"text"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the previews of an archived transcript",
		Long: `Reconstruct the loose and tight previews of an archived move log.

The pattern is read from the same database; when it is missing there the
active catalog is used. Without --transcript the most recent transcript is
shown.

Examples:
  kumihimo preview --db ./kumihimo.db
  kumihimo preview --db ./kumihimo.db --transcript 0192... --model tight --color`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Transcript, "transcript", "", "transcript id (default: most recent)")
	cmd.Flags().StringVar(&opts.Model, "model", "both", "preview model (both|loose|tight)")
	cmd.Flags().Float64Var(&opts.Width, "width", DefaultCanvasWidth, "preview canvas width in pixels")
	cmd.Flags().Float64Var(&opts.Viewport, "viewport", DefaultViewport, "preview viewport height in pixels")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "draw previews in strand colours")

	return cmd
}

func runPreview(opts *PreviewOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	if !isPreviewModel(opts.Model) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid model %q: must be one of %v", opts.Model, previewModels))
	}

	st, err := openStore(opts.Database, false)
	if err != nil {
		return err
	}
	defer st.Close()

	t, err := selectTranscript(ctx, st, opts.Transcript)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeUnknownRecord, err.Error(), map[string]any{"transcript": opts.Transcript})
			return WrapExitError(ExitCommandError, "transcript not found", err)
		}
		_ = formatter.Error(ErrCodeStoreRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read transcript", err)
	}

	p, err := transcriptPattern(ctx, st, opts.RootOptions, t.PatternID)
	if err != nil {
		if catalog.IsLoadError(err, "") {
			return catalogExitError(formatter, err)
		}
		return unknownPatternExitError(formatter, t.PatternID, err)
	}

	renderOpts := preview.RenderOptions{Color: opts.Color}
	result := PreviewResult{
		Transcript: t.ID,
		Pattern:    p.ID,
		Moves:      len(t.Moves),
	}
	var text string
	if opts.Model != "tight" {
		loose := preview.Loose(p, t.Moves)
		s := summarizeLoose(loose, opts.Width, opts.Viewport)
		result.Loose = &s
		text += preview.RenderLoose(loose, renderOpts)
	}
	if opts.Model != "loose" {
		tight := preview.Tight(p, t.Moves)
		s := summarizeTight(tight, opts.Width, opts.Viewport)
		result.Tight = &s
		if text != "" {
			text += "\n"
		}
		text += preview.RenderTight(tight, renderOpts)
	}
	result.Text = text

	if opts.Format == "json" {
		return writeIndented(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result, Session: t.SessionID})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Transcript %s (%s, %d move(s))\n\n", truncateID(t.ID), p.ID, len(t.Moves))
	fmt.Fprint(w, text)
	return nil
}

func isPreviewModel(model string) bool {
	for _, m := range previewModels {
		if m == model {
			return true
		}
	}
	return false
}

// selectTranscript reads transcript id, or the most recent one when id is
// empty. A missing transcript is sql.ErrNoRows.
func selectTranscript(ctx context.Context, st *store.Store, id string) (ir.Transcript, error) {
	if id != "" {
		return st.ReadTranscript(ctx, id)
	}
	all, err := st.ReadTranscripts(ctx, "")
	if err != nil {
		return ir.Transcript{}, err
	}
	if len(all) == 0 {
		return ir.Transcript{}, fmt.Errorf("no transcripts archived: %w", sql.ErrNoRows)
	}
	return all[len(all)-1], nil
}

// transcriptPattern finds the pattern a transcript was played on: first in
// the database holding the transcript, then in the active catalog.
func transcriptPattern(ctx context.Context, st *store.Store, opts *RootOptions, patternID string) (ir.Pattern, error) {
	p, err := st.ReadPattern(ctx, patternID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ir.Pattern{}, err
	}

	cat, err := loadCatalog(ctx, opts)
	if err != nil {
		return ir.Pattern{}, err
	}
	return cat.Lookup(patternID)
}
