package store

import (
	"context"
	"fmt"

	"github.com/roach88/kumihimo/internal/ir"
)

// TranscriptState is the integrity analysis of one archived transcript.
// It checks the stored record against itself only; reachability under the
// rule engine is checked by engine.ReplayLog.
type TranscriptState struct {
	Transcript ir.Transcript

	LogDigestOK    bool // stored log digest matches the stored moves
	LayoutDigestOK bool // stored layout digest matches the stored final layout
	LayoutValid    bool // stored final layout satisfies the one-strand-per-slot model
	VersionOK      bool // written by the current transcript version
}

// Intact reports whether every check passed.
func (st TranscriptState) Intact() bool {
	return st.LogDigestOK && st.LayoutDigestOK && st.LayoutValid && st.VersionOK
}

// GetTranscriptState reads a transcript and recomputes its digests.
func (s *Store) GetTranscriptState(ctx context.Context, id string) (TranscriptState, error) {
	t, err := s.ReadTranscript(ctx, id)
	if err != nil {
		return TranscriptState{}, fmt.Errorf("get transcript state: %w", err)
	}
	return analyseTranscript(t), nil
}

// FindCorruptTranscripts returns every transcript that fails an integrity
// check, in seq order.
func (s *Store) FindCorruptTranscripts(ctx context.Context) ([]TranscriptState, error) {
	all, err := s.ReadTranscripts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("find corrupt transcripts: %w", err)
	}

	var corrupt []TranscriptState
	for _, t := range all {
		if st := analyseTranscript(t); !st.Intact() {
			corrupt = append(corrupt, st)
		}
	}
	return corrupt, nil
}

func analyseTranscript(t ir.Transcript) TranscriptState {
	st := TranscriptState{
		Transcript: t,
		VersionOK:  t.IRVersion == ir.TranscriptVersion,
	}

	if d, err := ir.LogDigest(t.PatternID, t.Moves); err == nil {
		st.LogDigestOK = d == t.LogDigest
	}

	final, err := ir.NewLayout(t.Final)
	if err != nil {
		return st
	}
	st.LayoutValid = true
	if d, err := ir.LayoutDigest(final); err == nil {
		st.LayoutDigestOK = d == t.LayoutDigest
	}
	return st
}
