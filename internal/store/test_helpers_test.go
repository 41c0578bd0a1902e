package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/kumihimo/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// kongoSetup is eight strands on slots 0-7.
func kongoSetup() []ir.Strand {
	colors := []string{"#c0392b", "#e67e22", "#f1c40f", "#27ae60", "#2980b9", "#8e44ad", "#ecf0f1", "#2c3e50"}
	setup := make([]ir.Strand, len(colors))
	for i, c := range colors {
		setup[i] = ir.Strand{ID: "t" + string(rune('0'+i)), Color: c, Position: i}
	}
	return setup
}

// createTestPattern creates a pattern with the kongo setup.
func createTestPattern(id string) ir.Pattern {
	return ir.Pattern{
		ID:         id,
		Name:       "Pattern " + id,
		Setup:      kongoSetup(),
		TotalSteps: 16,
	}
}

// createTestTranscript creates an unsaved transcript of the first two kongo
// moves, which return t7 to its starting slot.
func createTestTranscript(id, sessionID string) ir.Transcript {
	return ir.Transcript{
		ID:        id,
		PatternID: "kongo_gumi_8",
		SessionID: sessionID,
		Moves: ir.MoveLog{
			{StrandID: "t7", From: 7, To: 15},
			{StrandID: "t7", From: 15, To: 7},
		},
		Final: kongoSetup(),
	}
}
