package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/kumihimo/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Catalog string // file, URL or .db; empty falls back to $KUMIHIMO_CATALOG
	LogFile string // JSON log file, appended to

	logger *logging.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kumihimo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kumihimo",
		Short: "kumihimo - marudai braiding simulator",
		Long: `A simulator for kumihimo braiding on a 16-slot marudai.

Plays catalog patterns move by move under their braiding rule, keeps an
undoable move log, and reconstructs loose and tight previews of the braid.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.openLogger(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.closeLogger()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "pattern catalog: file, http(s) URL or .db (default $KUMIHIMO_CATALOG, then built-in)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "append JSON logs to this file")

	// Add subcommands
	cmd.AddCommand(NewPatternsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewAutoCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewTranscriptsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))

	return cmd
}

// openLogger builds the process logger. Terminal logs are only written in
// verbose mode; the play command replaces the terminal leg entirely.
func (o *RootOptions) openLogger(cmd *cobra.Command) error {
	if o.logger != nil {
		return nil
	}
	cfg := logging.Config{File: o.LogFile, Verbose: o.Verbose}
	if o.Verbose && cmd.Name() != "play" {
		cfg.Terminal = cmd.ErrOrStderr()
	}
	l, err := logging.New(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	o.logger = l
	return nil
}

func (o *RootOptions) closeLogger() error {
	if o.logger == nil {
		return nil
	}
	err := o.logger.Close()
	o.logger = nil
	return err
}

// Logger returns the configured logger, or a discarding one when commands
// run without the root command (as in tests).
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return logging.Discard()
	}
	return o.logger.Logger
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
