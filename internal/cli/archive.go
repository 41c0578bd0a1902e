package cli

import (
	"context"
	"fmt"

	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/ir"
)

// archiveSession writes the pattern and the session's move log to the
// database at path and returns the transcript id. The pattern is stored
// alongside so the archive can be previewed and verified on its own.
func archiveSession(ctx context.Context, path string, p ir.Pattern, snap engine.Snapshot) (string, error) {
	st, err := openStore(path, true)
	if err != nil {
		return "", err
	}
	defer st.Close()

	if err := st.WritePatterns(ctx, []ir.Pattern{p}); err != nil {
		return "", fmt.Errorf("write pattern: %w", err)
	}
	rec, _, err := st.WriteTranscript(ctx, ir.Transcript{
		PatternID: p.ID,
		SessionID: snap.SessionID,
		Moves:     snap.Log,
		Final:     snap.Layout.ByPosition(),
	})
	if err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return rec.ID, nil
}
