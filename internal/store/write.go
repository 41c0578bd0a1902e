package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/kumihimo/internal/ir"
)

// WritePatterns upserts a catalog in one transaction.
//
// New patterns are appended after the highest stored ordinal, in the order
// given. Existing ids keep their ordinal and have every other column
// replaced. Patterns are not validated here; callers pass catalog output.
func (s *Store) WritePatterns(ctx context.Context, patterns []ir.Pattern) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write patterns: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(ordinal), 0) FROM patterns`).Scan(&next); err != nil {
		return fmt.Errorf("write patterns: max ordinal: %w", err)
	}

	for _, p := range patterns {
		setupJSON, err := marshalStrands(p.Setup)
		if err != nil {
			return fmt.Errorf("write pattern %q: %w", p.ID, err)
		}
		next++
		_, err = tx.ExecContext(ctx, `
			INSERT INTO patterns
			(id, ordinal, name, description, setup, total_steps, preview_image)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				setup = excluded.setup,
				total_steps = excluded.total_steps,
				preview_image = excluded.preview_image
		`,
			p.ID,
			next,
			p.Name,
			p.Description,
			setupJSON,
			p.TotalSteps,
			p.PreviewImage,
		)
		if err != nil {
			return fmt.Errorf("write pattern %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write patterns: commit: %w", err)
	}
	return nil
}

// DeletePattern removes a pattern. Archived transcripts are kept.
// Returns false if no such pattern exists.
func (s *Store) DeletePattern(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM patterns WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete pattern: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete pattern: rows affected: %w", err)
	}
	return n > 0, nil
}

// WriteTranscript archives a move log and returns the stored record.
//
// The caller supplies PatternID, SessionID, Moves and Final. WriteTranscript
// fills ID (UUIDv7) when empty, assigns the next Seq, computes both digests
// and stamps the versions. Final must be a valid layout.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing an id that already
// exists returns the stored record and inserted=false.
func (s *Store) WriteTranscript(ctx context.Context, t ir.Transcript) (rec ir.Transcript, inserted bool, err error) {
	if t.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return ir.Transcript{}, false, fmt.Errorf("write transcript: generate id: %w", err)
		}
		t.ID = id.String()
	}

	final, err := ir.NewLayout(t.Final)
	if err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: final layout: %w", err)
	}
	if t.Moves == nil {
		t.Moves = ir.MoveLog{}
	}
	t.Final = final.ByPosition()

	if t.LogDigest, err = ir.LogDigest(t.PatternID, t.Moves); err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: %w", err)
	}
	if t.LayoutDigest, err = ir.LayoutDigest(final); err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: %w", err)
	}
	t.EngineVersion = ir.EngineVersion
	t.IRVersion = ir.TranscriptVersion

	movesJSON, err := marshalMoves(t.Moves)
	if err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: %w", err)
	}
	finalJSON, err := marshalStrands(t.Final)
	if err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: %w", err)
	}

	// Use a transaction to ensure atomicity of seq assignment and insert
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM transcripts`).Scan(&t.Seq); err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO transcripts
		(id, seq, pattern_id, session_id, moves, move_count, final_layout,
		 log_digest, layout_digest, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		t.ID,
		t.Seq,
		t.PatternID,
		t.SessionID,
		movesJSON,
		len(t.Moves),
		finalJSON,
		t.LogDigest,
		t.LayoutDigest,
		t.EngineVersion,
		t.IRVersion,
	)
	if err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: rows affected: %w", err)
	}
	if n == 0 {
		existing, err := scanTranscriptRow(tx.QueryRowContext(ctx, selectTranscript+` WHERE id = ?`, t.ID))
		if err != nil {
			return ir.Transcript{}, false, fmt.Errorf("write transcript: read existing: %w", err)
		}
		return existing, false, nil
	}

	if err := tx.Commit(); err != nil {
		return ir.Transcript{}, false, fmt.Errorf("write transcript: commit: %w", err)
	}
	return t, true, nil
}
