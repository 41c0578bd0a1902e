package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/kumihimo/internal/ir"
)

const selectPattern = `
	SELECT id, name, description, setup, total_steps, preview_image
	FROM patterns`

const selectTranscript = `
	SELECT id, seq, pattern_id, session_id, moves, final_layout,
	       log_digest, layout_digest, engine_version, ir_version
	FROM transcripts`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadPatterns returns every stored pattern in import order.
// Results are ordered by ordinal ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the store holds no patterns.
func (s *Store) ReadPatterns(ctx context.Context) ([]ir.Pattern, error) {
	rows, err := s.db.QueryContext(ctx, selectPattern+`
		ORDER BY ordinal ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer rows.Close()

	patterns := []ir.Pattern{}
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}
	return patterns, nil
}

// ReadPattern retrieves a single pattern by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadPattern(ctx context.Context, id string) (ir.Pattern, error) {
	return scanPattern(s.db.QueryRowContext(ctx, selectPattern+` WHERE id = ?`, id))
}

// ReadTranscript retrieves a single transcript by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadTranscript(ctx context.Context, id string) (ir.Transcript, error) {
	return scanTranscriptRow(s.db.QueryRowContext(ctx, selectTranscript+` WHERE id = ?`, id))
}

// ReadTranscripts returns archived transcripts ordered by seq ASC, id ASC.
// An empty patternID returns every transcript.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadTranscripts(ctx context.Context, patternID string) ([]ir.Transcript, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if patternID == "" {
		rows, err = s.db.QueryContext(ctx, selectTranscript+`
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, selectTranscript+`
			WHERE pattern_id = ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`, patternID)
	}
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	transcripts := []ir.Transcript{}
	for rows.Next() {
		t, err := scanTranscriptRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		transcripts = append(transcripts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return transcripts, nil
}

// CountTranscripts returns the number of archived transcripts.
func (s *Store) CountTranscripts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transcripts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return n, nil
}

func scanPattern(row rowScanner) (ir.Pattern, error) {
	var p ir.Pattern
	var setupJSON string

	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &setupJSON, &p.TotalSteps, &p.PreviewImage,
	); err != nil {
		return ir.Pattern{}, err
	}

	setup, err := unmarshalStrands(setupJSON)
	if err != nil {
		return ir.Pattern{}, err
	}
	p.Setup = setup
	return p, nil
}

// scanTranscriptRow scans a single row into a Transcript. Errors from Scan
// are returned unwrapped so callers can match sql.ErrNoRows.
func scanTranscriptRow(row rowScanner) (ir.Transcript, error) {
	var t ir.Transcript
	var movesJSON, finalJSON string

	if err := row.Scan(
		&t.ID, &t.Seq, &t.PatternID, &t.SessionID, &movesJSON, &finalJSON,
		&t.LogDigest, &t.LayoutDigest, &t.EngineVersion, &t.IRVersion,
	); err != nil {
		return ir.Transcript{}, err
	}

	moves, err := unmarshalMoves(movesJSON)
	if err != nil {
		return ir.Transcript{}, err
	}
	t.Moves = moves

	final, err := unmarshalStrands(finalJSON)
	if err != nil {
		return ir.Transcript{}, err
	}
	t.Final = final

	return t, nil
}
