package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kumihimo/internal/ir"
	"github.com/roach88/kumihimo/internal/rules"
)

// PatternSummary is one catalog entry as listed by the patterns command.
type PatternSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Strands    int    `json:"strands"`
	TotalSteps int    `json:"total_steps"`
	Family     string `json:"family,omitempty"`
	Playable   bool   `json:"playable"`
}

// PatternsResult holds the listing of a catalog.
type PatternsResult struct {
	Source   string           `json:"source"`
	Patterns []PatternSummary `json:"patterns"`
}

// PatternDetail describes a single pattern.
type PatternDetail struct {
	PatternSummary
	Description  string      `json:"description"`
	PreviewImage string      `json:"preview_image,omitempty"`
	Cycle        int         `json:"cycle,omitempty"`
	Setup        []ir.Strand `json:"setup"`
}

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the patterns in the catalog",
		Long: `List the patterns in the active catalog.

A pattern is playable when a braiding rule is registered for its id.

Examples:
  kumihimo patterns
  kumihimo patterns --catalog ./patterns.json
  kumihimo patterns show kongo_gumi_8`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatterns(rootOpts, cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "show <pattern-id>",
		Short:         "Show one pattern and its initial layout",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatternShow(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func runPatterns(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cat, err := loadCatalog(context.Background(), opts)
	if err != nil {
		return catalogExitError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d pattern(s) from %s", len(cat.Patterns), cat.Source)

	registry := rules.DefaultRegistry()
	result := PatternsResult{
		Source:   cat.Source,
		Patterns: make([]PatternSummary, 0, len(cat.Patterns)),
	}
	for _, p := range cat.Patterns {
		result.Patterns = append(result.Patterns, summarize(p, registry))
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Catalog: %s\n\n", result.Source)
	for _, s := range result.Patterns {
		status := "✓"
		family := s.Family
		if !s.Playable {
			status = "✗"
			family = "no rule"
		}
		fmt.Fprintf(w, "%s %-20s %-28s %2d strands  %3d steps  %s\n",
			status, s.ID, s.Name, s.Strands, s.TotalSteps, family)
	}
	return nil
}

func runPatternShow(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cat, err := loadCatalog(context.Background(), opts)
	if err != nil {
		return catalogExitError(formatter, err)
	}

	p, err := cat.Lookup(id)
	if err != nil {
		return unknownPatternExitError(formatter, id, err)
	}

	registry := rules.DefaultRegistry()
	detail := PatternDetail{
		PatternSummary: summarize(p, registry),
		Description:    p.Description,
		PreviewImage:   p.PreviewImage,
		Setup:          p.Setup,
	}
	if rule, err := registry.Lookup(p.ID); err == nil {
		detail.Cycle = rule.Cycle()
	}

	if opts.Format == "json" {
		return formatter.Success(detail)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", detail.Name, detail.ID)
	if detail.Description != "" {
		fmt.Fprintf(w, "  %s\n", detail.Description)
	}
	fmt.Fprintln(w)
	if detail.Playable {
		fmt.Fprintf(w, "Rule: %s, cycle %d\n", detail.Family, detail.Cycle)
	} else {
		fmt.Fprintln(w, "Rule: none registered (listed but not playable)")
	}
	fmt.Fprintf(w, "Steps: %d\n", detail.TotalSteps)
	fmt.Fprintln(w, "Setup:")
	fmt.Fprint(w, ringDiagram(p.Setup))
	return nil
}

func summarize(p ir.Pattern, registry *rules.Registry) PatternSummary {
	s := PatternSummary{
		ID:         p.ID,
		Name:       p.Name,
		Strands:    len(p.Setup),
		TotalSteps: p.TotalSteps,
	}
	if rule, err := registry.Lookup(p.ID); err == nil {
		s.Family = string(rule.Family())
		s.Playable = true
	}
	return s
}

// ringDiagram lists every slot of the ring with its strand, if any.
func ringDiagram(setup []ir.Strand) string {
	layout, err := ir.NewLayout(setup)
	if err != nil {
		return fmt.Sprintf("  invalid layout: %v\n", err)
	}
	var b strings.Builder
	for pos := 0; pos < ir.RingSize; pos++ {
		s, ok := layout.At(pos)
		if !ok {
			fmt.Fprintf(&b, "  %2d  .\n", pos)
			continue
		}
		fmt.Fprintf(&b, "  %2d  %-8s %s\n", pos, s.ID, s.Color)
	}
	return b.String()
}
