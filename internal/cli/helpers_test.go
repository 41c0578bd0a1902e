package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kumihimo/internal/catalog"
	"github.com/roach88/kumihimo/internal/engine"
	"github.com/roach88/kumihimo/internal/logging"
)

// testCatalogYAML holds one playable pattern and one with no rule.
const testCatalogYAML = `patterns:
  - id: kongo_gumi_8
    name: Kongo Gumi
    description: Round braid
    totalSteps: 16
    setup:
      - { id: t0, color: "#c0392b", position: 0 }
      - { id: t1, color: "#e67e22", position: 1 }
      - { id: t2, color: "#f1c40f", position: 2 }
      - { id: t3, color: "#27ae60", position: 3 }
      - { id: t4, color: "#16a085", position: 4 }
      - { id: t5, color: "#2980b9", position: 5 }
      - { id: t6, color: "#8e44ad", position: 6 }
      - { id: t7, color: "#ecf0f1", position: 7 }
  - id: hira_gumi_4
    name: Hira Gumi
    totalSteps: 4
    setup:
      - { id: a, color: "#000000", position: 0 }
      - { id: b, color: "#ffffff", position: 8 }
`

// writeFile writes content to name in a fresh temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// archivePlayed plays n moves of a built-in pattern and archives the log
// in the database at dbPath. It returns the transcript id.
func archivePlayed(t *testing.T, dbPath, patternID string, n int) string {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	p, err := cat.Lookup(patternID)
	require.NoError(t, err)

	s := engine.New(engine.WithLogger(logging.Discard()))
	require.NoError(t, s.Load(p))
	applied, err := engine.Autoplay(context.Background(), s, n)
	require.NoError(t, err)
	require.Equal(t, n, applied)

	id, err := archiveSession(context.Background(), dbPath, p, s.Snapshot())
	require.NoError(t, err)
	return id
}

// tempDB returns a database path in a fresh temp dir. The file does not
// exist yet.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "kumihimo.db")
}
