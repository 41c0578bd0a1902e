package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kumihimo/internal/store"
)

func TestCatalogImport(t *testing.T) {
	dbPath := tempDB(t)
	src := writeFile(t, "patterns.yaml", testCatalogYAML)

	cmd := NewCatalogImportCommand(&RootOptions{Format: "text"})
	output, err := execute(cmd, src, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, output, "  kongo_gumi_8\n")
	assert.Contains(t, output, "  hira_gumi_4\n")
	assert.Contains(t, output, "✓ Imported 2 pattern(s) into "+dbPath)

	// The database now serves as a catalog
	output, err = execute(NewPatternsCommand(&RootOptions{Format: "text", Catalog: dbPath}))
	require.NoError(t, err)
	assert.Contains(t, output, "Catalog: "+dbPath)
	assert.Contains(t, output, "✓ kongo_gumi_8")
	assert.Contains(t, output, "✗ hira_gumi_4")
}

func TestCatalogImportReplacesByID(t *testing.T) {
	dbPath := tempDB(t)
	src := writeFile(t, "patterns.yaml", testCatalogYAML)

	for i := 0; i < 2; i++ {
		_, err := execute(NewCatalogImportCommand(&RootOptions{Format: "text"}), src, "--db", dbPath)
		require.NoError(t, err)
	}

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	patterns, err := st.ReadPatterns(context.Background())
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, "kongo_gumi_8", patterns[0].ID)
	assert.Equal(t, "hira_gumi_4", patterns[1].ID)
}

func TestCatalogImportJSON(t *testing.T) {
	dbPath := tempDB(t)
	src := writeFile(t, "patterns.yaml", testCatalogYAML)

	output, err := execute(NewCatalogImportCommand(&RootOptions{Format: "json"}), src, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, []string{"kongo_gumi_8", "hira_gumi_4"}, resp.Data.Imported)
}

func TestCatalogImportInvalid(t *testing.T) {
	dbPath := tempDB(t)

	_, err := execute(NewCatalogImportCommand(&RootOptions{Format: "text"}), "/nonexistent/patterns.yaml", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCatalogImportRequiresDB(t *testing.T) {
	src := writeFile(t, "patterns.yaml", testCatalogYAML)

	_, err := execute(NewCatalogImportCommand(&RootOptions{Format: "text"}), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}
