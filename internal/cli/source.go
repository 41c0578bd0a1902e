package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/kumihimo/internal/catalog"
	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
	"github.com/roach88/kumihimo/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Catalog errors
	ErrCodeCatalogLoad    = "E010" // Catalog could not be read or parsed
	ErrCodeCatalogInvalid = "E011" // Catalog read but failed validation
	ErrCodeUnknownPattern = "E020" // Pattern id not in catalog or has no rule

	// Store errors
	ErrCodeStoreOpen      = "E030" // Database could not be opened
	ErrCodeStoreRead      = "E031" // Database query failed
	ErrCodeStoreWrite     = "E032" // Database write failed
	ErrCodeUnknownRecord  = "E033" // Transcript id not found
	ErrCodeReplayMismatch = "E040" // Archived log disagrees with the rule
	ErrCodeScenarioFailed = "E050" // Play scenario failed
)

// dbExtensions are the suffixes treated as a store rather than a catalog file.
var dbExtensions = []string{".db", ".sqlite", ".sqlite3"}

func isDatabasePath(source string) bool {
	ext := strings.ToLower(filepath.Ext(source))
	for _, e := range dbExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// loadCatalog resolves and loads the catalog named by --catalog, the
// environment or the built-in default.
func loadCatalog(ctx context.Context, opts *RootOptions) (*catalog.Catalog, error) {
	loader := catalog.NewLoader()
	return loadCatalogFrom(ctx, loader, loader.ResolveSource(opts.Catalog))
}

// loadCatalogFrom loads source, reading patterns from a store when source
// is a database path.
func loadCatalogFrom(ctx context.Context, loader *catalog.Loader, source string) (*catalog.Catalog, error) {
	if !isDatabasePath(source) {
		return loader.Load(ctx, source)
	}

	// store.Open would create a missing database.
	if _, err := os.Stat(source); errors.Is(err, fs.ErrNotExist) {
		return nil, &catalog.LoadError{Code: catalog.ErrCodeNotFound, Message: "catalog database not found", Source: source, Err: err}
	}
	st, err := store.Open(source)
	if err != nil {
		return nil, &catalog.LoadError{Code: catalog.ErrCodeReadFailed, Message: err.Error(), Source: source, Err: err}
	}
	defer st.Close()

	patterns, err := st.ReadPatterns(ctx)
	if err != nil {
		return nil, &catalog.LoadError{Code: catalog.ErrCodeReadFailed, Message: err.Error(), Source: source, Err: err}
	}
	return catalog.New(patterns, source)
}

// catalogErrorDetails extracts the JSON details of a catalog load error.
func catalogErrorDetails(err error) map[string]any {
	var le *catalog.LoadError
	if !errors.As(err, &le) {
		return nil
	}
	details := map[string]any{
		"code":   string(le.Code),
		"source": le.Source,
	}
	if le.Pos.IsValid() {
		details["line"] = le.Pos.Line()
		details["column"] = le.Pos.Column()
	}
	return details
}

// catalogExitError reports a catalog that could not be loaded.
// Load failures are command errors (exit code 2) and are never retried.
func catalogExitError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeCatalogLoad, err.Error(), catalogErrorDetails(err))
	return WrapExitError(ExitCommandError, "failed to load catalog", err)
}

// resolvePattern finds id in cat and checks a rule exists for it.
// Both failures carry a "did you mean" suggestion when one is close.
func resolvePattern(cat *catalog.Catalog, registry *rules.Registry, id string) (ir.Pattern, error) {
	p, err := cat.Lookup(id)
	if err != nil {
		return ir.Pattern{}, err
	}
	if _, err := registry.Lookup(p.ID); err != nil {
		return ir.Pattern{}, engine.NewUnknownPatternError(p.ID, err)
	}
	return p, nil
}

// unknownPatternExitError reports a pattern id that cannot be played.
func unknownPatternExitError(formatter *OutputFormatter, id string, err error) error {
	var details map[string]any
	var upe *rules.UnknownPatternError
	if errors.As(err, &upe) && upe.Suggestion != "" {
		details = map[string]any{"suggestion": upe.Suggestion}
	}
	_ = formatter.Error(ErrCodeUnknownPattern, err.Error(), details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("unknown pattern %q", id), err)
}

// openStore opens an existing database, or creates one when create is set.
func openStore(path string, create bool) (*store.Store, error) {
	if !create {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
