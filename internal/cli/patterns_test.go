package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kumihimo/internal/ir"
)

func TestPatternsDefaultCatalog(t *testing.T) {
	cmd := NewPatternsCommand(&RootOptions{Format: "text"})
	output, err := execute(cmd)
	require.NoError(t, err)

	assert.Contains(t, output, "Catalog: builtin:default.yaml")
	assert.Contains(t, output, "✓ kongo_gumi_8")
	assert.Contains(t, output, "✓ kaku_yatsu_gumi_8")
	assert.Contains(t, output, "two-zone")
	assert.Contains(t, output, "four-zone")
}

func TestPatternsCustomCatalog(t *testing.T) {
	path := writeFile(t, "patterns.yaml", testCatalogYAML)

	cmd := NewPatternsCommand(&RootOptions{Format: "text", Catalog: path})
	output, err := execute(cmd)
	require.NoError(t, err)

	assert.Contains(t, output, "✓ kongo_gumi_8")
	assert.Contains(t, output, "✗ hira_gumi_4")
	assert.Contains(t, output, "no rule")
}

func TestPatternsJSON(t *testing.T) {
	path := writeFile(t, "patterns.yaml", testCatalogYAML)

	cmd := NewPatternsCommand(&RootOptions{Format: "json", Catalog: path})
	output, err := execute(cmd)
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   PatternsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Patterns, 2)

	assert.Equal(t, PatternSummary{
		ID:         "kongo_gumi_8",
		Name:       "Kongo Gumi",
		Strands:    8,
		TotalSteps: 16,
		Family:     "two-zone",
		Playable:   true,
	}, resp.Data.Patterns[0])
	assert.False(t, resp.Data.Patterns[1].Playable)
	assert.Empty(t, resp.Data.Patterns[1].Family)
}

func TestPatternsBadCatalog(t *testing.T) {
	cmd := NewPatternsCommand(&RootOptions{Format: "text", Catalog: "/nonexistent/patterns.yaml"})
	output, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "Error [E010]")
}

func TestPatternShow(t *testing.T) {
	cmd := NewPatternsCommand(&RootOptions{Format: "text"})
	output, err := execute(cmd, "show", "kongo_gumi_8")
	require.NoError(t, err)

	assert.Contains(t, output, "(kongo_gumi_8)")
	assert.Contains(t, output, "Rule: two-zone, cycle 2")
	assert.Contains(t, output, "Steps: 16")
	assert.Contains(t, output, "   7  t7")
	assert.Contains(t, output, "  15  .")
}

func TestPatternShowUnplayable(t *testing.T) {
	path := writeFile(t, "patterns.yaml", testCatalogYAML)

	cmd := NewPatternsCommand(&RootOptions{Format: "json", Catalog: path})
	output, err := execute(cmd, "show", "hira_gumi_4")
	require.NoError(t, err)

	var resp struct {
		Data PatternDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.False(t, resp.Data.Playable)
	assert.Zero(t, resp.Data.Cycle)
	assert.Equal(t, []ir.Strand{
		{ID: "a", Color: "#000000", Position: 0},
		{ID: "b", Color: "#ffffff", Position: 8},
	}, resp.Data.Setup)
}

func TestPatternShowUnknown(t *testing.T) {
	cmd := NewPatternsCommand(&RootOptions{Format: "json"})
	output, err := execute(cmd, "show", "kongo_gumi_9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownPattern, resp.Error.Code)
	assert.Equal(t, map[string]any{"suggestion": "kongo_gumi_8"}, resp.Error.Details)
}

func TestRingDiagram(t *testing.T) {
	diagram := ringDiagram([]ir.Strand{{ID: "a", Color: "#000000", Position: 2}})
	assert.Contains(t, diagram, "   2  a        #000000\n")
	assert.Contains(t, diagram, "   0  .\n")

	assert.Contains(t, ringDiagram([]ir.Strand{
		{ID: "a", Color: "#000000", Position: 2},
		{ID: "b", Color: "#000000", Position: 2},
	}), "invalid layout")
}
