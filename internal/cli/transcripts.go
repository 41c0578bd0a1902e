package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/store"
)

// TranscriptsOptions holds flags for the transcripts command.
type TranscriptsOptions struct {
	*RootOptions
	Database   string
	Pattern    string // optional - filter to one pattern
	Transcript string // optional - show the moves of one transcript
}

// TranscriptEntry is one archived transcript in the listing.
type TranscriptEntry struct {
	Seq        int64    `json:"seq"`
	ID         string   `json:"id"`
	Pattern    string   `json:"pattern"`
	Session    string   `json:"session"`
	Moves      int      `json:"moves"`
	TotalSteps int      `json:"total_steps,omitempty"`
	Complete   bool     `json:"complete"`
	LogDigest  string   `json:"log_digest"`
	Timeline   []string `json:"timeline,omitempty"`
}

// TranscriptsResult holds the listing.
type TranscriptsResult struct {
	Transcripts []TranscriptEntry `json:"transcripts"`
	Total       int               `json:"total"`
}

// NewTranscriptsCommand creates the transcripts command.
func NewTranscriptsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranscriptsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "List archived transcripts",
		Long: `List the move logs archived in a database, oldest first.

With --transcript the move-by-move timeline of that transcript is shown.

Examples:
  kumihimo transcripts --db ./kumihimo.db
  kumihimo transcripts --db ./kumihimo.db --pattern kongo_gumi_8
  kumihimo transcripts --db ./kumihimo.db --transcript 0192... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscripts(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "filter to a specific pattern id")
	cmd.Flags().StringVar(&opts.Transcript, "transcript", "", "show the timeline of one transcript")

	return cmd
}

func runTranscripts(opts *TranscriptsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := openStore(opts.Database, false)
	if err != nil {
		return err
	}
	defer st.Close()

	var transcripts []ir.Transcript
	if opts.Transcript != "" {
		t, err := st.ReadTranscript(ctx, opts.Transcript)
		if errors.Is(err, sql.ErrNoRows) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("transcript not found: %s", opts.Transcript), err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read transcript", err)
		}
		transcripts = []ir.Transcript{t}
	} else {
		transcripts, err = st.ReadTranscripts(ctx, opts.Pattern)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read transcripts", err)
		}
	}

	result := TranscriptsResult{
		Transcripts: make([]TranscriptEntry, 0, len(transcripts)),
		Total:       len(transcripts),
	}
	for _, t := range transcripts {
		entry, err := buildEntry(ctx, st, t, opts.Transcript != "")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read pattern", err)
		}
		result.Transcripts = append(result.Transcripts, entry)
	}

	if opts.Format == "json" {
		return writeIndented(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: result})
	}
	return outputTranscriptsText(cmd.OutOrStdout(), result, opts.Verbose)
}

// buildEntry converts a stored transcript. The step count comes from the
// pattern stored alongside it, when there is one.
func buildEntry(ctx context.Context, st *store.Store, t ir.Transcript, timeline bool) (TranscriptEntry, error) {
	entry := TranscriptEntry{
		Seq:       t.Seq,
		ID:        t.ID,
		Pattern:   t.PatternID,
		Session:   t.SessionID,
		Moves:     len(t.Moves),
		LogDigest: t.LogDigest,
	}

	p, err := st.ReadPattern(ctx, t.PatternID)
	switch {
	case err == nil:
		entry.TotalSteps = p.TotalSteps
		entry.Complete = len(t.Moves) >= p.TotalSteps
	case !errors.Is(err, sql.ErrNoRows):
		return TranscriptEntry{}, err
	}

	if timeline {
		entry.Timeline = moveStrings(t.Moves)
	}
	return entry, nil
}

// outputTranscriptsText outputs the listing as text.
func outputTranscriptsText(w io.Writer, result TranscriptsResult, verbose bool) error {
	if result.Total == 0 {
		fmt.Fprintln(w, "No transcripts found in database.")
		return nil
	}

	for _, e := range result.Transcripts {
		fmt.Fprintf(w, "[%d] %s  %-20s %s\n", e.Seq, truncateID(e.ID), e.Pattern, progressLabel(e))
		if verbose {
			fmt.Fprintf(w, "       Session: %s\n", truncateID(e.Session))
			fmt.Fprintf(w, "       Digest:  %s\n", truncateID(e.LogDigest))
		}
		for i, m := range e.Timeline {
			fmt.Fprintf(w, "       %3d  %s\n", i, m)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d transcript(s)\n", result.Total)
	return nil
}

// progressLabel returns a human-readable completion status.
func progressLabel(e TranscriptEntry) string {
	switch {
	case e.TotalSteps == 0:
		return fmt.Sprintf("%d move(s)", e.Moves)
	case e.Complete:
		return fmt.Sprintf("%d/%d moves, complete", e.Moves, e.TotalSteps)
	default:
		return fmt.Sprintf("%d/%d moves, incomplete", e.Moves, e.TotalSteps)
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
