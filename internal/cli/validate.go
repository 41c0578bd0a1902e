package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kumihimo/internal/catalog"
	"github.com/roach88/kumihimo/internal/rules"
)

// ValidationError is one problem found in a catalog.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Source   string            `json:"source"`
	Patterns int               `json:"patterns,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`

	// Unplayable lists pattern ids with no registered rule. They are
	// warnings, not errors: such patterns can still be listed.
	Unplayable []string `json:"unplayable,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog>",
		Short: "Validate a pattern catalog",
		Long: `Validate a pattern catalog without playing it.

The catalog may be a .json, .yaml, .yml or .cue file, an http(s) URL, or a
database written by "catalog import". Every pattern is checked against the
catalog schema and the one-strand-per-slot layout model.

Exit codes:
  0 - Catalog valid
  1 - Catalog invalid
  2 - Catalog could not be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, source string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cat, err := loadCatalogFrom(context.Background(), catalog.NewLoader(), source)
	if err != nil {
		var le *catalog.LoadError
		if !errors.As(err, &le) || isReadFailure(le.Code) {
			return catalogExitError(formatter, err)
		}
		return outputValidationErrors(formatter, source, []ValidationError{toValidationError(le)})
	}
	formatter.VerboseLog("Validated %d pattern(s) from %s", len(cat.Patterns), cat.Source)

	result := ValidationResult{
		Valid:      true,
		Source:     cat.Source,
		Patterns:   len(cat.Patterns),
		Unplayable: cat.Unsupported(rules.DefaultRegistry()),
	}
	return outputValidateSuccess(formatter, result)
}

// isReadFailure separates "could not read" from "read but invalid".
func isReadFailure(code catalog.LoadErrorCode) bool {
	switch code {
	case catalog.ErrCodeNotFound, catalog.ErrCodeReadFailed, catalog.ErrCodeHTTPStatus, catalog.ErrCodeUnsupportedFormat:
		return true
	}
	return false
}

func toValidationError(le *catalog.LoadError) ValidationError {
	ve := ValidationError{
		Code:    string(le.Code),
		Message: le.Message,
	}
	if le.Pos.IsValid() {
		ve.Line = le.Pos.Line()
	}
	return ve
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Catalog valid: %d pattern(s) in %s\n", result.Patterns, result.Source)
	for _, id := range result.Unplayable {
		fmt.Fprintf(formatter.Writer, "  warning: %s has no braiding rule and cannot be played\n", id)
	}
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, source string, errs []ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Source: source,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeCatalogInvalid,
				Message: errs[0].Message,
			},
		}
		if err := writeIndented(formatter.Writer, response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
